package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/therapyassist/dashboard-go/internal/app"
	"github.com/therapyassist/dashboard-go/internal/service"
)

const chatHelp = `Type a message and press enter. Commands:
  /new            start a new session
  /audio <file>   send a recorded audio file
  /report         analyze the session, generate its report and download it
  /download       download the current session's report again
  /history        print the transcript
  /quit           leave`

// runChat opens a new session and reads messages from stdin until /quit
// or end of input. Failed actions are reported and the loop continues.
func runChat(ctx context.Context, a *app.App, _ []string) error {
	created, err := a.SessionService.Create(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s\n%s\n", created.SessionID, chatHelp)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		quit, err := chatLine(ctx, a, line)
		if quit {
			return nil
		}
		if err != nil && !isReported(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func chatLine(ctx context.Context, a *app.App, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
		return false, nil
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(out, chatHelp)
	case "/new":
		created, err := a.SessionService.Create(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Session %s\n", created.SessionID)
	case "/audio":
		return false, sendAudio(ctx, a, strings.TrimSpace(arg))
	case "/report":
		result, err := a.ReportService.Generate(ctx)
		if result != nil && result.Report != nil && len(result.Report.TherapyTags) > 0 {
			fmt.Fprintf(out, "Tags: %s\n", strings.Join(result.Report.TherapyTags, ", "))
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Saved %s\n", result.Path)
	case "/download":
		path, err := a.ReportService.DownloadCurrent(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Saved %s\n", path)
	case "/history":
		for _, m := range a.Chat.Messages() {
			fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
		}
	default:
		resp, err := a.ChatService.Send(ctx, line)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "%s\n", resp.BotResponse)
	}
	return false, nil
}

func sendAudio(ctx context.Context, a *app.App, path string) error {
	if path == "" {
		return usageError("/audio needs a file path")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	resp, err := a.ChatService.SendAudio(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "(you) %s\n%s\n", resp.Transcription, resp.BotResponse)
	return nil
}

// isReported reports whether err was already shown to the user.
func isReported(err error) bool {
	var svcErr *service.Error
	return errors.As(err, &svcErr) || errors.Is(err, service.ErrNothingToSend)
}
