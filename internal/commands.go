package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
	"github.com/mysticcoders/voicenotes-sync/internal/format"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/mcpserver"
	"github.com/mysticcoders/voicenotes-sync/internal/voicenotes"
)

// RunLogin authenticates against the recording service and persists the
// session token for subsequent commands.
func RunLogin(ctx context.Context, cfg *Config, email, password string) error {
	rt, err := buildRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	if email == "" {
		email = cfg.API.Username
	}
	if password == "" {
		password = cfg.API.Password
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required (flags or config)")
	}

	if _, err := rt.client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	user, err := rt.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("login succeeded but profile fetch failed: %w", err)
	}
	fmt.Printf("logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

// RunSync runs one sync pass and prints the report.
func RunSync(ctx context.Context, cfg *Config, full bool) error {
	rt, err := buildRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := rt.orch.Sync(ctx, full)
	if err != nil {
		return err
	}
	fmt.Printf("synced in %s: %d created, %d updated, %d kept, %d already synced, %d excluded, %d failed\n",
		report.Duration.Round(time.Millisecond),
		report.Created, report.Updated, report.SkipExisting,
		report.AlreadySynced, report.Excluded, report.Failed)
	return nil
}

// RunToday lists the synced notes recorded today.
func RunToday(_ context.Context, cfg *Config) error {
	rt, err := buildRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := index.Rebuild(rt.db, rt.store, rt.log); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	notes, err := rt.db.Notes()
	if err != nil {
		return err
	}

	// Wiki-link bullets, so the output pastes straight into a document.
	count := 0
	for _, n := range notes {
		if !format.IsToday(n.CreatedAt) {
			continue
		}
		count++
		fmt.Printf("- [[%s]]\n", strings.TrimSuffix(n.Path, ".md"))
	}
	if count == 0 {
		fmt.Println("no recordings synced today")
	}
	return nil
}

// RunSearch runs a full-text query over the synced index.
func RunSearch(_ context.Context, cfg *Config, query string, limit int) error {
	rt, err := buildRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := index.Rebuild(rt.db, rt.store, rt.log); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	results, err := rt.db.Search(query, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\n", r.Path, r.Snippet)
	}
	return nil
}

// RunUser prints the authenticated remote profile.
func RunUser(ctx context.Context, cfg *Config) error {
	rt, err := buildRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	user, err := rt.client.Me(ctx)
	if err != nil {
		if apperr.IsAuth(err) {
			return fmt.Errorf("not logged in (run the login command first): %w", err)
		}
		return err
	}
	fmt.Printf("%s <%s>, %d recordings\n", user.Name, user.Email, user.RecordingsCount)
	return nil
}

// RunLogout discards the persisted session token.
func RunLogout(_ context.Context, cfg *Config) error {
	session, err := voicenotes.NewSession(cfg.State.TokenFile(), "", "")
	if err != nil {
		return err
	}
	session.Clear()
	fmt.Println("logged out")
	return nil
}

// RunMCP serves the MCP tool surface on stdin/stdout.
func RunMCP(_ context.Context, cfg *Config) error {
	rt, err := buildRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.close()

	srv := mcpserver.New(rt.store, rt.db, rt.orch)
	return srv.ServeStdio()
}
