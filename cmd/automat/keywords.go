// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show or edit the search keywords",
	RunE:  runKeywordsShow,
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <keyword>",
	Short: "Add a search keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordsAdd,
}

var keywordsRemoveCmd = &cobra.Command{
	Use:   "remove <keyword>",
	Short: "Remove a search keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordsRemove,
}

var keywordsSetCmd = &cobra.Command{
	Use:   "set <keyword> [keyword...]",
	Short: "Replace the whole keyword list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKeywordsSet,
}

func init() {
	keywordsCmd.AddCommand(keywordsAddCmd, keywordsRemoveCmd, keywordsSetCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywordsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	for _, kw := range a.keywords.List() {
		fmt.Fprintln(os.Stdout, kw)
	}
	return nil
}

func runKeywordsAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	added, err := a.keywords.Add(args[0])
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(os.Stdout, "%q is already a keyword\n", args[0])
		return nil
	}
	fmt.Fprintf(os.Stdout, "added %q\n", args[0])
	return nil
}

func runKeywordsRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	removed, err := a.keywords.Remove(args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(os.Stdout, "%q is not a keyword\n", args[0])
		return nil
	}
	fmt.Fprintf(os.Stdout, "removed %q\n", args[0])
	return nil
}

func runKeywordsSet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.keywords.Set(args); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "keywords set to %v\n", a.keywords.List())
	return nil
}
