package event

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataOf(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		expected Metadata
	}{
		{"install", AppInstalled{}, Metadata{Method: http.MethodPost, RequiresBody: true, Operation: OperationInstall}},
		{"update", AppInfoUpdated{}, Metadata{Method: http.MethodPost, RequiresBody: true, Operation: OperationUpdate}},
		{"delivered", PushDelivered{}, Metadata{Method: http.MethodGet, UniqKeyParam: true}},
		{"clicked", PushClicked{}, Metadata{Method: http.MethodPost, RequiresBody: true}},
		{"visit", TrackVisit{}, Metadata{Method: http.MethodPost, RequiresBody: true}},
		{"async", AsyncOperation{Name: "OrderCreated"}, Metadata{Method: http.MethodPost}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := MetadataOf(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, md)
		})
	}
}

func TestMetadataOf_Nil(t *testing.T) {
	_, err := MetadataOf(nil)
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestKeyAndParseType(t *testing.T) {
	for _, typ := range []Type{
		AppInstalled{}, AppInfoUpdated{}, PushDelivered{}, PushClicked{}, TrackVisit{},
		AsyncOperation{Name: "Cart.Viewed"},
	} {
		parsed, err := ParseType(Key(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	assert.Equal(t, "async_operation:Cart.Viewed", Key(AsyncOperation{Name: "Cart.Viewed"}))
}

func TestParseType_Unknown(t *testing.T) {
	typ, err := ParseType("push_opened")
	assert.Nil(t, typ)
	assert.ErrorIs(t, err, ErrUnknownEventType)
}
