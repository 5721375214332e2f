package cmd

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"nearshare/internal/files"
	"nearshare/internal/history"
	"nearshare/internal/ui"
)

// runProgram runs the share screen; swapped in tests
var runProgram = func(p *tea.Program) error {
	_, err := p.Run()
	return err
}

func runTUI(ctx context.Context, e *env, args []string, uri string) error {
	refs, err := files.Expand(osFs, args)
	if err != nil {
		return err
	}

	watcher := newWatcher(e.bus, e.cfg)
	defer watcher.Stop()

	opts := ui.Options{
		Bus:     e.bus,
		Config:  e.cfg,
		Sender:  newSender(e.bus, e.cfg, osFs),
		Watcher: watcher,
		Fs:      osFs,
		Files:   refs,
		URI:     uri,
	}
	if store := e.openHistory(); store != nil {
		defer store.Close()
		recorder := history.NewRecorder(e.bus, store)
		defer recorder.Stop()
		opts.History = store
	}

	log.Printf("Creating UI model...")
	model := ui.NewModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	bridge := ui.NewBridge(e.bus)
	go bridge.Run(p.Send)
	defer bridge.Close()

	log.Printf("Starting UI...")
	if err := runProgram(p); err != nil && ctx.Err() == nil {
		log.Printf("Error running program: %v", err)
		return fmt.Errorf("error running program: %w", err)
	}
	log.Printf("UI exited normally")
	return nil
}
