package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given backend options", t, func() {
		Convey("Then none and empty are unconfigured", func() {
			for _, b := range []string{"", BackendNone} {
				g, err := New(Options{Backend: b})
				So(g, ShouldBeNil)
				So(errors.Is(err, ErrUnconfigured), ShouldBeTrue)
			}
		})

		Convey("Then openai without a key is unconfigured", func() {
			_, err := New(Options{Backend: BackendOpenAI})
			So(errors.Is(err, ErrUnconfigured), ShouldBeTrue)
		})

		Convey("Then an unknown backend is unconfigured", func() {
			_, err := New(Options{Backend: "bard"})
			So(errors.Is(err, ErrUnconfigured), ShouldBeTrue)
		})

		Convey("Then configured backends report their names", func() {
			g, err := New(Options{Backend: BackendOpenAI, APIKey: "k"})
			So(err, ShouldBeNil)
			So(g.Name(), ShouldEqual, BackendOpenAI)

			g, err = New(Options{Backend: BackendOllama, Endpoint: "http://localhost:11434"})
			So(err, ShouldBeNil)
			So(g.Name(), ShouldEqual, BackendOllama)

			g, err = New(Options{Backend: BackendExec, Command: "cat"})
			So(err, ShouldBeNil)
			So(g.Name(), ShouldEqual, BackendExec)
		})
	})
}

func TestOpenAIGenerator(t *testing.T) {
	Convey("Given an OpenAI-compatible server", t, func() {
		var got chatRequest
		var auth string
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			if r.URL.Path != "/chat/completions" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":"quota"}`))
				return
			}
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`))
		}))
		defer srv.Close()

		g := NewOpenAIGenerator(srv.Client(), srv.URL+"/", "sk-test", "gpt-test")

		Convey("When generating JSON output", func() {
			resp, err := g.Generate(context.Background(), Request{System: "sys", Prompt: "hi", JSON: true, MaxTokens: 64, Temperature: 0.2})

			Convey("Then the request and response are mapped", func() {
				So(err, ShouldBeNil)
				So(resp.Content, ShouldEqual, `{"ok":true}`)
				So(resp.PromptTokens, ShouldEqual, 12)
				So(resp.CompletionTokens, ShouldEqual, 5)
				So(auth, ShouldEqual, "Bearer sk-test")
				So(got.Model, ShouldEqual, "gpt-test")
				So(len(got.Messages), ShouldEqual, 2)
				So(got.Messages[0].Role, ShouldEqual, "system")
				So(got.Messages[1].Content, ShouldEqual, "hi")
				So(got.ResponseFormat, ShouldNotBeNil)
				So(got.ResponseFormat.Type, ShouldEqual, "json_object")
			})
		})

		Convey("When the server rejects the request", func() {
			status = http.StatusTooManyRequests
			_, err := g.Generate(context.Background(), Request{Prompt: "hi"})

			Convey("Then a generation error carries the status", func() {
				So(errors.Is(err, ErrGeneration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "429")
			})
		})
	})

	Convey("Given an unreachable endpoint", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		g := NewOpenAIGenerator(&http.Client{Timeout: time.Second}, url, "k", "")
		_, err := g.Generate(context.Background(), Request{Prompt: "hi"})
		So(errors.Is(err, ErrGeneration), ShouldBeTrue)
	})
}

func TestOllamaGenerator(t *testing.T) {
	Convey("Given an Ollama server", t, func() {
		var got ollamaRequest
		body := `{"response":"{\"a\":1}","done":true,"eval_count":7,"prompt_eval_count":3}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		g := NewOllamaGenerator(srv.Client(), srv.URL, "")

		Convey("When generating", func() {
			resp, err := g.Generate(context.Background(), Request{Prompt: "p", JSON: true, MaxTokens: 10})

			Convey("Then a single non-streamed call is made", func() {
				So(err, ShouldBeNil)
				So(resp.Content, ShouldEqual, `{"a":1}`)
				So(resp.CompletionTokens, ShouldEqual, 7)
				So(got.Stream, ShouldBeFalse)
				So(got.Format, ShouldEqual, "json")
				So(got.Model, ShouldEqual, "llama3.2:latest")
				So(got.Options.NumPredict, ShouldEqual, 10)
			})
		})

		Convey("When the body is not JSON", func() {
			body = "oops"
			_, err := g.Generate(context.Background(), Request{Prompt: "p"})
			So(errors.Is(err, ErrGeneration), ShouldBeTrue)
		})
	})
}

func TestExecGenerator(t *testing.T) {
	Convey("Given exec generators", t, func() {
		Convey("When the command prints a response", func() {
			g, err := NewExecGenerator(`echo '{"content":"hello","completion_tokens":2}'`)
			So(err, ShouldBeNil)
			resp, err := g.Generate(context.Background(), Request{Prompt: "p"})
			So(err, ShouldBeNil)
			So(resp.Content, ShouldEqual, "hello")
			So(resp.CompletionTokens, ShouldEqual, 2)
		})

		Convey("When the command fails", func() {
			g, err := NewExecGenerator("false")
			So(err, ShouldBeNil)
			_, err = g.Generate(context.Background(), Request{Prompt: "p"})
			So(errors.Is(err, ErrGeneration), ShouldBeTrue)
		})

		Convey("When the command string is malformed", func() {
			_, err := NewExecGenerator(`echo "unterminated`)
			So(err, ShouldNotBeNil)
		})
	})
}
