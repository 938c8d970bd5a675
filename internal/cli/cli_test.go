package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("positional template", func(t *testing.T) {
		opts, exit, err := Parse([]string{"-data", "d.yaml", "card.html"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "card.html", opts.Template)
		assert.Equal(t, "d.yaml", opts.Data)
		assert.Equal(t, "warn", opts.LogLevel)
		assert.Equal(t, 10*time.Second, opts.HTTPTimeout)
	})

	t.Run("flag wins over positional", func(t *testing.T) {
		opts, _, err := Parse([]string{"-template", "a.html", "b.html"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "a.html", opts.Template)
	})

	t.Run("all flags", func(t *testing.T) {
		opts, _, err := Parse([]string{
			"-template", "@https://x/card.html", "-data", "@https://x/d.json",
			"-o", "out.html", "-watch", "30s", "-http-timeout", "2s", "-log-level", "DEBUG",
		}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, &Options{
			Template:    "@https://x/card.html",
			Data:        "@https://x/d.json",
			Output:      "out.html",
			Watch:       30 * time.Second,
			HTTPTimeout: 2 * time.Second,
			LogLevel:    "debug",
		}, opts)
	})

	t.Run("no template prints usage", func(t *testing.T) {
		var out bytes.Buffer
		opts, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, opts)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("help", func(t *testing.T) {
		_, exit, err := Parse([]string{"-h"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, exit)
	})

	invalid := map[string][]string{
		"unknown flag":       {"-nope", "a.html"},
		"log level":          {"-log-level", "trace", "a.html"},
		"negative watch":     {"-watch", "-1s", "a.html"},
		"watch without data": {"-watch", "1s", "a.html"},
		"watch and validate": {"-watch", "1s", "-data", "d.json", "-validate", "a.html"},
		"timeout":            {"-http-timeout", "0s", "a.html"},
	}
	for name, args := range invalid {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(args, &bytes.Buffer{})
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func options(tmpl, data string) *Options {
	return &Options{Template: tmpl, Data: data, HTTPTimeout: 5 * time.Second, LogLevel: "error"}
}

func TestRunToStdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmpl := write(t, dir, "card.html", "{{#each people}}{{#if admin}}*{{/if}}{{name}};{{/each}}")
	data := write(t, dir, "people.yaml", "people:\n  - name: Ada\n    admin: true\n  - name: Linus\n")

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), options(tmpl, data), &out, nil))
	assert.Equal(t, "*Ada;Linus;\n", out.String())
}

func TestRunToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmpl := write(t, dir, "card.html", "<p>{{title}}</p>")
	data := write(t, dir, "page.json", `{"title":"Home"}`)
	outPath := filepath.Join(dir, "out.html")

	opts := options(tmpl, data)
	opts.Output = outPath

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), opts, &out, nil))
	assert.Empty(t, out.String())

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "<p>Home</p>", string(content))
}

func TestRunWithoutData(t *testing.T) {
	t.Parallel()

	tmpl := write(t, t.TempDir(), "card.html", "Hello {{name}}")

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), options(tmpl, ""), &out, nil))
	assert.Equal(t, "Hello {{name}}\n", out.String())
}

func TestRunFromURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/card.html":
			fmt.Fprint(w, "Hi {{user.name}}")
		case "/me":
			fmt.Fprint(w, `{"user":{"name":"Grace"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), options("@"+server.URL+"/card.html", "@"+server.URL+"/me"), &out, nil))
	assert.Equal(t, "Hi Grace\n", out.String())
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := write(t, dir, "good.html", "{{a}}")
	bad := write(t, dir, "bad.html", "{{#if a +}}x{{/if}}")
	badData := write(t, dir, "bad.json", "{")

	ctx := context.Background()
	assert.Error(t, Run(ctx, options(filepath.Join(dir, "missing.html"), ""), &bytes.Buffer{}, nil))
	assert.Error(t, Run(ctx, options(good, filepath.Join(dir, "missing.json")), &bytes.Buffer{}, nil))
	assert.ErrorContains(t, Run(ctx, options(good, badData), &bytes.Buffer{}, nil), "failed to decode")
	assert.ErrorContains(t, Run(ctx, options(bad, ""), &bytes.Buffer{}, nil), "condition syntax error")
}

func TestRunValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := write(t, dir, "good.html", "{{#if a}}{{#each b}}{{c}}{{/each}}{{/if}}")
	bad := write(t, dir, "bad.html", "{{#if f(x)}}{{#each b}}{{/if}}")

	opts := options(good, "")
	opts.Validate = true

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), opts, &out, nil))
	assert.Equal(t, good+": ok\n", out.String())

	opts.Template = bad
	out.Reset()
	err := Run(context.Background(), opts, &out, nil)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, exitErr.Message, "2 problem(s)")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "function calls are not supported")
	assert.Contains(t, lines[1], "{{#each b}}")
}

func TestRunWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmpl := write(t, dir, "card.html", "v={{v}}")
	data := write(t, dir, "d.json", `{"v":1}`)
	outPath := filepath.Join(dir, "out.html")

	opts := options(tmpl, data)
	opts.Output = outPath
	opts.Watch = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, opts, &bytes.Buffer{}, nil) }()

	read := func() string {
		content, _ := os.ReadFile(outPath)
		return string(content)
	}

	assert.Eventually(t, func() bool { return read() == "v=1" }, 2*time.Second, 5*time.Millisecond)
	write(t, dir, "d.json", `{"v":2}`)
	assert.Eventually(t, func() bool { return read() == "v=2" }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
