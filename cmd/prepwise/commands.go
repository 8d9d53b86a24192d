package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"prepwise/interview/internal/call"
)

// how long a disconnect waits for the event stream to close on its own
const stopGrace = 5 * time.Second

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate interview questions and save the interview",
	Long: `Generate interview questions and save the interview.

Examples:
  prepwise generate --role "Frontend Developer" --level Junior --techstack "React,TypeScript" --amount 5 --user u1
  prepwise generate --role SRE --techstack Go,Kubernetes --type behavioural --amount 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		level, _ := cmd.Flags().GetString("level")
		techstack, _ := cmd.Flags().GetString("techstack")
		kind, _ := cmd.Flags().GetString("type")
		amount, _ := cmd.Flags().GetInt("amount")
		user, _ := cmd.Flags().GetString("user")

		if strings.TrimSpace(role) == "" || strings.TrimSpace(techstack) == "" {
			return errors.New("--role and --techstack are required")
		}

		id, err := newAPIClient().GenerateQuestions(cmd.Context(), generateRequest{
			Type:      kind,
			Role:      role,
			Level:     level,
			TechStack: techstack,
			Amount:    amount,
			UserID:    user,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Interview %s created\n", id)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("role", "", "job role")
	generateCmd.Flags().String("level", "", "experience level")
	generateCmd.Flags().String("techstack", "", "comma-separated technologies")
	generateCmd.Flags().String("type", "", "interview focus, e.g. technical or behavioural")
	generateCmd.Flags().Int("amount", 5, "number of questions")
	generateCmd.Flags().String("user", "", "user id that owns the interview")
}

// --- interviews ---

var interviewsCmd = &cobra.Command{
	Use:   "interviews",
	Short: "List saved interviews, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := newAPIClient().ListInterviews(cmd.Context(), user, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Total == 0 {
			fmt.Fprintln(out, "No interviews yet")
			return nil
		}
		for _, in := range result.Items {
			fmt.Fprintf(out, "%s  %-24s %-10s %2d questions  %s\n",
				in.ID.Hex(), in.Role, in.Level, len(in.Questions), in.CreatedAt.Local().Format(time.DateTime))
		}
		return nil
	},
}

func init() {
	interviewsCmd.Flags().String("user", "", "user id (ignored when the token identifies the user)")
	interviewsCmd.Flags().Int("limit", 0, "maximum number of interviews")
}

// --- call ---

type callOptions struct {
	WorkflowID string
	EventsURL  string
	UserID     string
	UserName   string
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Run a voice interview call and print the transcript",
	Long: `Run a voice interview call and print the transcript.

The command starts the call through the interview service and follows the
provider's realtime events until the call ends. Press Ctrl-C to hang up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, _ := cmd.Flags().GetString("workflow")
		events, _ := cmd.Flags().GetString("events")
		user, _ := cmd.Flags().GetString("user")
		name, _ := cmd.Flags().GetString("name")

		if events == "" {
			return errors.New("--events is required")
		}

		return runCall(cmd.Context(), cmd.OutOrStdout(), newAPIClient(), callOptions{
			WorkflowID: workflow,
			EventsURL:  events,
			UserID:     user,
			UserName:   name,
		})
	},
}

func init() {
	callCmd.Flags().String("workflow", os.Getenv("VAPI_WORKFLOW_ID"), "voice workflow id")
	callCmd.Flags().String("events", "", "websocket URL of the call event stream")
	callCmd.Flags().String("user", "", "user id passed to the workflow")
	callCmd.Flags().String("name", "", "user name passed to the workflow")
}

// runCall drives one session until it finishes. ctx cancellation hangs up.
func runCall(ctx context.Context, w io.Writer, starter call.Starter, opts callOptions) error {
	out := &lockedWriter{w: w}

	feedCtx, cancelFeed := context.WithCancel(context.Background())
	defer cancelFeed()

	feed, err := call.Dial(ctx, opts.EventsURL, nil, zap.NewNop())
	if err != nil {
		return err
	}

	finished := make(chan struct{})
	session := call.NewSession(call.Options{
		WorkflowID:     opts.WorkflowID,
		Starter:        starter,
		Source:         feed,
		OnStatusChange: func(s call.Status) { fmt.Fprintf(out, "[%s]\n", s) },
		OnFinished:     func() { close(finished) },
	})
	release := session.Mount()
	defer release()

	unsubscribe := printTranscript(feed, out)
	defer unsubscribe()

	feedDone := make(chan struct{})
	g, gctx := errgroup.WithContext(feedCtx)

	g.Go(func() error {
		defer close(feedDone)
		return feed.Run(gctx)
	})

	g.Go(func() error {
		err := session.Start(ctx, map[string]any{
			"username": opts.UserName,
			"userid":   opts.UserID,
		})
		if err != nil {
			return err
		}
		if started := session.Call(); started != nil && started.WebCallURL != "" {
			fmt.Fprintf(out, "Join the call at %s\n", started.WebCallURL)
		}

		select {
		case <-finished:
			// the provider ended the call, close our side of the stream
			if err := feed.Stop(); err != nil {
				cancelFeed()
			}
		case <-ctx.Done():
			if err := session.Disconnect(); err != nil {
				cancelFeed()
			}
		case <-feedDone:
			return nil
		}

		select {
		case <-feedDone:
		case <-time.After(stopGrace):
			cancelFeed()
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if transcript := session.Transcript(); len(transcript) > 0 {
		fmt.Fprintf(out, "Call finished with %d transcript lines\n", len(transcript))
	}
	return err
}

// printTranscript echoes final transcript lines and speaking changes as they
// arrive.
func printTranscript(source call.EventSource, out io.Writer) func() {
	unsubscribers := []func(){
		source.Subscribe(call.EventMessage, func(e call.Event) {
			if m := e.Message; m != nil && m.Type == call.MessageTypeTranscript && m.TranscriptType == call.TranscriptTypeFinal {
				fmt.Fprintf(out, "%s: %s\n", m.Role, m.Transcript)
			}
		}),
		source.Subscribe(call.EventSpeechStart, func(call.Event) { fmt.Fprintln(out, "(assistant speaking)") }),
		source.Subscribe(call.EventSpeechEnd, func(call.Event) { fmt.Fprintln(out, "(assistant listening)") }),
		source.Subscribe(call.EventError, func(e call.Event) { fmt.Fprintf(out, "call error: %v\n", e.Err) }),
	}
	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

// lockedWriter serializes writes from the feed and session goroutines
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
