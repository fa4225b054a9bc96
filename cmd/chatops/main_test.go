package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gimlet-io/chatops/pkg/notifications"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSlack(t *testing.T, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Nil(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/chat.update":
			fmt.Fprint(w, `{"ok":false,"error":"message_not_found"}`)
		default:
			fmt.Fprintf(w, `{"ok":true,"channel":%q,"ts":"1700000000.000200"}`, r.FormValue("channel"))
		}
	}))
}

func setEnv(t *testing.T, slackURL string) {
	t.Setenv("SLACK_API_URL", slackURL)
	t.Setenv("SLACK_API_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL", "C0123456")
	t.Setenv("SLACK_TIMESTAMP", "")
	t.Setenv("GITHUB_ACTOR", "laszlocph")
	t.Setenv("GITHUB_REPOSITORY", "gimlet-io/getting-started-app")
	t.Setenv("GITHUB_RUN_ID", "42")
	t.Setenv("GITHUB_REF", "main")
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("TITLE", "Deploying to staging")
	t.Setenv("PROJECT_NAME", "getting-started-app")
	t.Setenv("ISSUE_ID", "1234")
	t.Setenv("MESSAGE_TYPE", "")
	t.Setenv("WORKFLOW", "")
	t.Setenv("NOTIFICATION_LAYOUT", "")
}

func Test_post(t *testing.T) {
	var hits int32
	server := fakeSlack(t, &hits)
	defer server.Close()
	setEnv(t, server.URL)

	out := &bytes.Buffer{}
	err := newApp(out).Run([]string{"chatops"})
	require.Nil(t, err)
	assert.Equal(t, "C0123456 1700000000.000200\n", out.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func Test_postFallsBackWhenUpdateFails(t *testing.T) {
	var hits int32
	server := fakeSlack(t, &hits)
	defer server.Close()
	setEnv(t, server.URL)
	t.Setenv("SLACK_TIMESTAMP", "1700000000.000100")

	out := &bytes.Buffer{}
	err := newApp(out).Run([]string{"chatops", "post"})
	require.Nil(t, err)
	assert.Equal(t, "C0123456 1700000000.000200\n", out.String())
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func Test_postMissingConfiguration(t *testing.T) {
	var hits int32
	server := fakeSlack(t, &hits)
	defer server.Close()
	setEnv(t, server.URL)
	t.Setenv("TITLE", "")
	t.Setenv("ISSUE_ID", "")

	err := newApp(&bytes.Buffer{}).Run([]string{"chatops"})
	var configErr *notifications.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, []string{"TITLE", "ISSUE_ID"}, configErr.Missing)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func Test_postRequestWithoutWorkflow(t *testing.T) {
	var hits int32
	server := fakeSlack(t, &hits)
	defer server.Close()
	setEnv(t, server.URL)
	t.Setenv("MESSAGE_TYPE", "REQUEST")

	err := newApp(&bytes.Buffer{}).Run([]string{"chatops"})
	assert.True(t, errors.Is(err, notifications.ErrMissingWorkflow))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func Test_preview(t *testing.T) {
	var hits int32
	server := fakeSlack(t, &hits)
	defer server.Close()
	setEnv(t, server.URL)
	t.Setenv("MESSAGE_TYPE", "ERROR")

	out := &bytes.Buffer{}
	err := newApp(out).Run([]string{"chatops", "--layout", "compact", "preview"})
	require.Nil(t, err)
	assert.True(t, strings.Contains(out.String(), `"type": "actions"`))
	assert.True(t, strings.Contains(out.String(), `/repos/gimlet-io/getting-started-app/actions/runs/42/rerun`))
	assert.False(t, strings.Contains(out.String(), "api.github.com"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}
