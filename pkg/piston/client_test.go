package piston

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		URL:            url,
		CompileTimeout: 10 * time.Second,
		RunTimeout:     3 * time.Second,
		HTTPTimeout:    2 * time.Second,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestDispatchSendsExecutionPayload(t *testing.T) {
	var received executeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		respondJSON(w, http.StatusOK, `{"language":"python","version":"3.10.0","run":{"stdout":"9\n","stderr":"","code":0,"signal":null,"output":"9\n"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	outcome, err := client.Dispatch(context.Background(), Request{
		Source:   "print(main(3))",
		Stdin:    "3",
		Language: "Python",
		Version:  "3.10.0",
	})
	require.NoError(t, err)

	require.Equal(t, "9\n", outcome.Stdout)
	require.Equal(t, "", outcome.Stderr)
	require.Equal(t, 0, outcome.ExitCode)
	require.Equal(t, StageRun, outcome.Stage)

	require.Equal(t, "python", received.Language)
	require.Equal(t, "3.10.0", received.Version)
	require.Len(t, received.Files, 1)
	require.Equal(t, "solution.py", received.Files[0].Name)
	require.Equal(t, "print(main(3))", received.Files[0].Content)
	require.Equal(t, "3", received.Stdin)
	require.Empty(t, received.Args)
	require.Equal(t, int64(10000), received.CompileTimeout)
	require.Equal(t, int64(3000), received.RunTimeout)
	require.Equal(t, int64(-1), received.RunMemoryLimit)
}

func TestDispatchReportsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusBadRequest, `{"message":"cobol-1.0.0 runtime is unknown"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Dispatch(context.Background(), Request{Source: "x", Language: "cobol", Version: "1.0.0"})
	require.Error(t, err)

	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	require.Contains(t, dispatchErr.Reason, "status 400")
	require.Contains(t, dispatchErr.Reason, "runtime is unknown")
}

func TestDispatchReportsUnreachableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url)
	_, err := client.Dispatch(context.Background(), Request{Source: "x", Language: "python", Version: "3.10.0"})
	require.Error(t, err)
	require.True(t, IsDispatchError(err))
	require.Equal(t, "execution service unreachable", err.Error())
}

func TestDispatchDefaultsMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"run":{}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	outcome, err := client.Dispatch(context.Background(), Request{Source: "x", Language: "python", Version: "3.10.0"})
	require.NoError(t, err)
	require.Equal(t, "", outcome.Stdout)
	require.Equal(t, "", outcome.Stderr)
	require.NotEqual(t, 0, outcome.ExitCode)
}

func TestDispatchHandlesMissingRunStage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"language":"python"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	outcome, err := client.Dispatch(context.Background(), Request{Source: "x", Language: "python", Version: "3.10.0"})
	require.NoError(t, err)
	require.NotEqual(t, 0, outcome.ExitCode)
	require.Equal(t, "execution service returned no run result", outcome.Stderr)
}

func TestDispatchReportsCompileFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"compile":{"stdout":"","stderr":"main.go:1: syntax error","code":1},"run":{"stdout":"","stderr":"","code":0}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	outcome, err := client.Dispatch(context.Background(), Request{Source: "x", Language: "go", Version: "1.16.2"})
	require.NoError(t, err)
	require.Equal(t, StageCompile, outcome.Stage)
	require.Equal(t, 1, outcome.ExitCode)
	require.Equal(t, "main.go:1: syntax error", outcome.Stderr)
}

func TestDispatchReportsSignalTermination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"run":{"stdout":"partial","stderr":"","code":null,"signal":"SIGKILL"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	outcome, err := client.Dispatch(context.Background(), Request{Source: "x", Language: "python", Version: "3.10.0"})
	require.NoError(t, err)
	require.NotEqual(t, 0, outcome.ExitCode)
	require.Equal(t, "SIGKILL", outcome.Signal)
	require.Equal(t, "terminated by signal SIGKILL", outcome.Stderr)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestSourceFileName(t *testing.T) {
	require.Equal(t, "solution.py", SourceFileName("python"))
	require.Equal(t, "solution.js", SourceFileName(" JavaScript "))
	require.Equal(t, "solution", SourceFileName("brainfuck"))
}
