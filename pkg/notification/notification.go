package notification

// Extras carried by every pending action.
const (
	ExtraNotificationID    = "notification_id"
	ExtraURL               = "push_url"
	ExtraUniqPushKey       = "uniq_push_key"
	ExtraUniqPushButtonKey = "uniq_push_button_key"
)

// MaxActionsCount is the number of buttons a notification can show.
const MaxActionsCount = 3

// PendingAction is what a tap opens.
type PendingAction struct {
	Screen      string            `json:"screen"`
	RequestCode int32             `json:"request_code"`
	Extras      map[string]string `json:"extras"`
}

// ActionButton is a secondary action.
type ActionButton struct {
	Text   string        `json:"text"`
	Action PendingAction `json:"action"`
}

// BigPictureStyle is the expanded style used when the image was fetched.
type BigPictureStyle struct {
	Image   []byte `json:"image"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// Channel describes where the notification is posted.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SmallIcon   string `json:"small_icon,omitempty"`
}

// Notification is a rendered push, ready for display.
type Notification struct {
	ID            int32            `json:"id"`
	UniqueKey     string           `json:"unique_key"`
	Channel       Channel          `json:"channel"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Priority      string           `json:"priority"`
	Visibility    string           `json:"visibility"`
	AutoCancel    bool             `json:"auto_cancel"`
	ContentAction PendingAction    `json:"content_action"`
	Actions       []ActionButton   `json:"actions,omitempty"`
	LargeIcon     []byte           `json:"large_icon,omitempty"`
	Style         *BigPictureStyle `json:"style,omitempty"`
}
