package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPhrasesCommand(configPath *string) *cobra.Command {
	phrasesCmd := &cobra.Command{
		Use:   "phrases",
		Short: "Manage the rebuttal phrase catalogue",
	}

	phrasesCmd.AddCommand(newPhrasesListCommand(configPath))
	phrasesCmd.AddCommand(newPhrasesPendingCommand(configPath))
	phrasesCmd.AddCommand(newPhrasesApproveCommand(configPath))
	phrasesCmd.AddCommand(newPhrasesRejectCommand(configPath))
	phrasesCmd.AddCommand(newPhrasesCleanupCommand(configPath))

	return phrasesCmd
}

func newPhrasesListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the approved phrase catalogue by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown(cmd.Context())

			if err := application.Repository().Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh catalogue: %w", err)
			}
			for category, phrases := range application.Repository().All() {
				fmt.Printf("%s (%d):\n", category, len(phrases))
				for _, p := range phrases {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}
}

func newPhrasesPendingCommand(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List phrases awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown(cmd.Context())

			pending, err := application.Store().ListPending(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list pending: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println("no phrases pending review")
				return nil
			}
			for _, p := range pending {
				fmt.Printf("%s  seen %dx  conf %.2f  quality %.2f  [%s]\n  %q\n",
					p.ID, p.DetectionCount, p.Confidence, p.QualityScore, p.Category, p.Phrase)
				if p.SimilarTo != "" {
					fmt.Printf("  similar to: %q\n", p.SimilarTo)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of pending phrases to show")
	return cmd
}

func newPhrasesApproveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending phrase into the catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown(cmd.Context())

			p, err := application.Store().ApprovePhrase(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("approve phrase: %w", err)
			}
			fmt.Printf("approved %q into %s\n", p.Phrase, p.Category)
			return nil
		},
	}
}

func newPhrasesRejectCommand(configPath *string) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending phrase and blacklist it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown(cmd.Context())

			if err := application.Store().RejectPhrase(cmd.Context(), args[0], reason); err != nil {
				return fmt.Errorf("reject phrase: %w", err)
			}
			fmt.Println("rejected")
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the phrase is rejected")
	return cmd
}

func newPhrasesCleanupCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Merge duplicate pending phrases",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown(cmd.Context())

			merged := application.Learner().Cleanup(cmd.Context())
			fmt.Printf("merged %d duplicate pending phrases\n", merged)
			return nil
		},
	}
}
