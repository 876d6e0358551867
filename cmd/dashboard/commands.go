package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/therapyassist/dashboard-go/internal/apiclient"
	"github.com/therapyassist/dashboard-go/internal/app"
	"github.com/therapyassist/dashboard-go/internal/model"
)

var out io.Writer = os.Stdout

var errUsage = errors.New("invalid arguments")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func table() *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
}

func runVerifyCode(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return usageError("verify-code takes exactly one access code")
	}
	creds, err := a.AuthService.VerifyAdminCode(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Username:   %s\nPassword:   %s\nExpires at: %s\n", creds.Username, creds.Password, creds.ExpiresAt)
	if creds.Message != "" {
		fmt.Fprintln(out, creds.Message)
	}
	return nil
}

func runLogin(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("login")
	role := fs.String("role", string(model.RoleUser), "admin or user")
	username := fs.String("username", "", "username")
	password := fs.String("password", os.Getenv("DASHBOARD_PASSWORD"), "password (defaults to $DASHBOARD_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r := model.Role(*role)
	if !r.Valid() {
		return usageError("role must be admin or user, got %q", *role)
	}
	resp, err := a.AuthService.Login(ctx, r, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s (%s)\n", resp.Identity().Name, r)
	return nil
}

func runLogout(ctx context.Context, a *app.App, _ []string) error {
	return a.AuthService.Logout(ctx)
}

func runWhoAmI(ctx context.Context, a *app.App, _ []string) error {
	id, err := a.AuthService.WhoAmI(ctx)
	if err != nil {
		return err
	}
	if !id.SignedIn {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}

	fmt.Fprintf(out, "Role:    %s\n", id.Role)
	fmt.Fprintf(out, "Token:   %s\n", id.MaskedToken)
	if id.Claims != nil {
		fmt.Fprintf(out, "Subject: %s\n", id.Claims.Subject)
		if !id.Claims.ExpiresAt.IsZero() {
			note := ""
			if id.Claims.Expired(time.Now()) {
				note = " (expired, the next request will sign you out)"
			}
			fmt.Fprintf(out, "Expires: %s%s\n", id.Claims.ExpiresAt.Local().Format(time.RFC1123), note)
		}
	}
	fmt.Fprintf(out, "API:     %s\n", a.Client.BaseURL())
	return nil
}

func runSessions(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("sessions")
	all := fs.Bool("all", false, "list every session (admin)")
	status := fs.String("status", "", "filter by status when listing all sessions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		sessions model.SessionList
		err      error
	)
	if *all {
		sessions, err = a.SessionService.All(ctx, *status)
	} else {
		sessions, err = a.SessionService.Mine(ctx)
	}
	if err != nil {
		return err
	}
	printSessions(sessions)
	return nil
}

func printSessions(sessions model.SessionList) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions")
		return
	}
	w := table()
	fmt.Fprintln(w, "SESSION\tUSER\tTYPE\tSTATUS\tMESSAGES\tREPORT\tSTARTED")
	for _, s := range sessions {
		report := "-"
		if s.ReportReady() {
			report = "ready"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			s.SessionID, s.UserName, s.SessionType, s.Status, s.MessageCount, report, s.StartTime)
	}
	w.Flush()
}

func runAnalyze(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return usageError("analyze takes exactly one session id")
	}
	resp, err := a.SessionService.Analyze(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s: %s\n", resp.SessionID, resp.Status)
	return nil
}

func runDownload(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return usageError("download needs a session id")
	}
	sessionID := args[0]

	fs := newFlagSet("download")
	user := fs.String("user", "user", "user name used in the file name")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	path, err := a.ReportService.Download(ctx, sessionID, *user)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", path)
	return nil
}

func runStats(ctx context.Context, a *app.App, _ []string) error {
	stats, err := a.AdminService.Stats(ctx)
	if err != nil {
		return err
	}

	w := table()
	fmt.Fprintf(w, "Total users\t%d\n", stats.TotalUsers)
	fmt.Fprintf(w, "Active users\t%d\n", stats.ActiveUsers)
	fmt.Fprintf(w, "Total sessions\t%d\n", stats.TotalSessions)
	fmt.Fprintf(w, "Active sessions\t%d\n", stats.ActiveSessions)
	fmt.Fprintf(w, "Reports generated\t%d\n", stats.TotalReportsGenerated)
	fmt.Fprintf(w, "Downloads\t%d\n", stats.TotalDownloads)
	fmt.Fprintf(w, "Sessions today\t%d\n", stats.SessionsToday)
	fmt.Fprintf(w, "New users this week\t%d\n", stats.NewUsersThisWeek)
	fmt.Fprintf(w, "Average session (min)\t%.1f\n", stats.AverageSessionDuration)
	w.Flush()

	if len(stats.MostActiveUsers) > 0 {
		fmt.Fprintln(out, "\nMost active users:")
		w = table()
		for _, u := range stats.MostActiveUsers {
			fmt.Fprintf(w, "  %s\t%d sessions\n", u.UserName, u.SessionCount)
		}
		w.Flush()
	}
	return nil
}

func runActivity(ctx context.Context, a *app.App, _ []string) error {
	activity, err := a.AdminService.Activity(ctx)
	if err != nil {
		return err
	}
	if len(activity) == 0 {
		fmt.Fprintln(out, "No activity")
		return nil
	}

	w := table()
	fmt.Fprintln(w, "TIME\tUSER\tTYPE\tDESCRIPTION")
	for _, entry := range activity {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Timestamp, entry.UserName, entry.ActivityType, entry.Description)
	}
	w.Flush()
	return nil
}

func runUsers(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return usageError("users needs a subcommand: list, create, get, update, deactivate, reactivate, history")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		return runUsersList(ctx, a, rest)
	case "create":
		return runUsersCreate(ctx, a, rest)
	case "update":
		return runUsersUpdate(ctx, a, rest)
	case "deactivate":
		return runUsersDeactivate(ctx, a, rest)
	}

	if len(rest) != 1 {
		return usageError("users %s takes exactly one user id", sub)
	}
	userID := rest[0]

	switch sub {
	case "get":
		user, err := a.UserService.Get(ctx, userID)
		if err != nil {
			return err
		}
		printUser(user)
		return nil
	case "reactivate":
		return a.UserService.Reactivate(ctx, userID)
	case "history":
		history, err := a.UserService.History(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "History for %s\n\n", strings.TrimSpace(history.UserName+" "+history.UserID))
		printSessions(history.Sessions)
		return nil
	}
	return usageError("unknown users subcommand %q", sub)
}

func runUsersList(ctx context.Context, a *app.App, args []string) error {
	params := apiclient.DefaultListUsersParams()

	fs := newFlagSet("users list")
	fs.IntVar(&params.Skip, "skip", params.Skip, "records to skip")
	fs.IntVar(&params.Limit, "limit", params.Limit, "maximum records")
	userType := fs.String("type", "", "vr or dashboard")
	fs.BoolVar(&params.IncludeInactive, "inactive", false, "include deactivated users")
	if err := fs.Parse(args); err != nil {
		return err
	}
	params.UserType = model.UserType(*userType)

	users, err := a.UserService.List(ctx, params)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(out, "No users")
		return nil
	}

	w := table()
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tUSERNAME\tEMAIL\tACTIVE\tSESSIONS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%d\n",
			u.UserID, u.Name, u.UserType, u.Username, u.Email, u.IsActive, u.TotalSessions)
	}
	w.Flush()
	return nil
}

func runUsersCreate(ctx context.Context, a *app.App, args []string) error {
	var req model.CreateUserRequest

	fs := newFlagSet("users create")
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	fs.StringVar(&req.Notes, "notes", "", "free-form notes")
	quick := fs.Bool("quick", false, "allow creating without an email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := a.UserService.Create(ctx, req, !*quick)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Username: %s\nPassword: %s\nUser ID:  %s\n", created.Username, created.Password, created.UserID)
	fmt.Fprintln(out, "Share these credentials with the user. The password is not shown again.")
	return nil
}

func runUsersUpdate(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return usageError("users update needs a user id")
	}
	userID := args[0]

	fs := newFlagSet("users update")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	notes := fs.String("notes", "", "free-form notes")
	active := fs.Bool("active", true, "whether the account is active")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var req model.UpdateUserRequest
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			req.Name = name
		case "email":
			req.Email = email
		case "phone":
			req.Phone = phone
		case "notes":
			req.Notes = notes
		case "active":
			req.IsActive = active
		}
	})

	user, err := a.UserService.Update(ctx, userID, req)
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

func runUsersDeactivate(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return usageError("users deactivate needs a user id")
	}
	userID := args[0]

	fs := newFlagSet("users deactivate")
	userType := fs.String("type", string(model.UserTypeDashboard), "vr or dashboard")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	return a.UserService.Deactivate(ctx, userID, model.UserType(*userType))
}

func printUser(u *model.User) {
	w := table()
	fmt.Fprintf(w, "ID\t%s\n", u.UserID)
	fmt.Fprintf(w, "Name\t%s\n", u.Name)
	fmt.Fprintf(w, "Type\t%s\n", u.UserType)
	if u.Username != "" {
		fmt.Fprintf(w, "Username\t%s\n", u.Username)
	}
	if u.Email != "" {
		fmt.Fprintf(w, "Email\t%s\n", u.Email)
	}
	if u.Phone != "" {
		fmt.Fprintf(w, "Phone\t%s\n", u.Phone)
	}
	if u.Notes != "" {
		fmt.Fprintf(w, "Notes\t%s\n", u.Notes)
	}
	fmt.Fprintf(w, "Active\t%t\n", u.IsActive)
	fmt.Fprintf(w, "Created\t%s\n", u.CreatedAt)
	if u.LastLogin != nil {
		fmt.Fprintf(w, "Last login\t%s\n", *u.LastLogin)
	}
	fmt.Fprintf(w, "Sessions\t%d\n", u.TotalSessions)
	fmt.Fprintf(w, "Downloads\t%d\n", u.TotalDownloads)
	w.Flush()
}
