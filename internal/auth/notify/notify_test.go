package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scholarspace/scholarspace/pkg/slogx"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"ok", Message{To: "a@uni.edu", Subject: "Hi", Body: "line1\nline2"}, false},
		{"no recipient", Message{Subject: "Hi"}, true},
		{"injected recipient", Message{To: "a@uni.edu\r\nBcc: b@uni.edu", Subject: "Hi"}, true},
		{"injected subject", Message{To: "a@uni.edu", Subject: "Hi\nBcc: b@uni.edu"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := slogx.WithContext(context.Background(), logger)

	err := LogNotifier{}.Send(ctx, Message{To: "a@uni.edu", Subject: "Reset", Body: "link"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "mail", entry["msg"])
	require.Equal(t, "a@uni.edu", entry["to"])
	require.Equal(t, "Reset", entry["subject"])
}
