package config

import (
	"time"

	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
)

// RouteSettings maps a link pattern to a screen.
type RouteSettings struct {
	Pattern string `mapstructure:"pattern" validate:"required"`
	Screen  string `mapstructure:"screen" validate:"required"`
}

// NotificationSettings configures how push payloads are rendered.
type NotificationSettings struct {
	ChannelID          string          `mapstructure:"channel_id" validate:"required"`
	ChannelName        string          `mapstructure:"channel_name" validate:"required"`
	ChannelDescription string          `mapstructure:"channel_description"`
	SmallIcon          string          `mapstructure:"small_icon"`
	DefaultScreen      string          `mapstructure:"default_screen" validate:"required"`
	Routes             []RouteSettings `mapstructure:"routes" validate:"dive"`
	ImageTimeout       time.Duration   `mapstructure:"image_timeout"`
}

// RouteTable compiles the configured routes in order.
func (n NotificationSettings) RouteTable() *notification.RouteTable {
	routes := make([]notification.Route, 0, len(n.Routes))
	for _, route := range n.Routes {
		routes = append(routes, notification.Route{Pattern: route.Pattern, Screen: route.Screen})
	}
	return notification.CompileRoutes(routes)
}

// Channel returns the channel metadata copied onto every notification.
func (n NotificationSettings) Channel() notification.Channel {
	return notification.Channel{
		ID:          n.ChannelID,
		Name:        n.ChannelName,
		Description: n.ChannelDescription,
		SmallIcon:   n.SmallIcon,
	}
}
