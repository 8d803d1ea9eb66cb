package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"careerbot/internal/assistant"
	"careerbot/internal/domain"
	"careerbot/internal/store"
	"careerbot/internal/tui"
	"careerbot/internal/watch"
)

var (
	chatUser string
	chatMode string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive career assistant",
	Long: `Start the interactive career assistant. The conversation is stored per user
and resumes where it left off.

Example:
  careerbot chat --user alice --mode jobs`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatUser, "user", "default", "User whose conversation to open")
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "Switch to this mode on start (general, jobs, resume, interview, mentorship)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := tea.LogToFile(cfg.Log.File, "careerbot")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := a.search.Close(closeCtx); err != nil {
			log.Printf("[WARN] close search index: %v", err)
		}
	}()
	a.open(ctx)

	db, err := store.Open(cfg.Data.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	conv, err := db.LoadConversation(ctx, chatUser)
	if errors.Is(err, store.ErrNotFound) {
		conv = &domain.Conversation{UserID: chatUser, Mode: domain.ModeGeneral}
	} else if err != nil {
		return err
	}
	if chatMode != "" {
		mode, ok := assistant.ParseMode(chatMode)
		if !ok {
			return fmt.Errorf("unknown mode %q", chatMode)
		}
		if mode != conv.Mode || len(conv.Turns) == 0 {
			a.assistant.SwitchMode(conv, mode)
		}
	}

	p := tea.NewProgram(tui.New(ctx, a.assistant, db, a.refresh, conv), tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.Data.Corpus, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond)
		if err != nil {
			log.Printf("[WARN] corpus watcher disabled: %v", err)
		} else {
			defer w.Close()
			go w.Run(ctx, func() {
				err := a.refresh(ctx)
				if err != nil {
					log.Printf("[ERROR] refresh after corpus change: %v", err)
				}
				p.Send(tui.RefreshedMsg{Err: err})
			})
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
