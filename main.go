package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"flowsmith/editor"
	"flowsmith/storage"
)

func main() {
	config, err := loadConfig(defaultConfigPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	m := initialModel(config, logger)
	if len(os.Args) > 1 {
		m.openFile(os.Args[1])
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initialModel(config *Config, logger *zap.Logger) model {
	session := editor.New(
		editor.WithLogger(logger.Named("editor")),
		editor.WithHistoryCapacity(config.HistoryCapacity),
		editor.WithSegments(config.DocumentSegments()),
	)
	return model{
		session:           session,
		files:             storage.Files{Dir: config.SaveDirectory},
		config:            config,
		log:               logger,
		mode:              ModeNormal,
		selectedFileIndex: -1,
	}
}
