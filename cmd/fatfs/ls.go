/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs/image"
	"github.com/rstms/fatfs/shell"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "list a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = args[0]
		}
		return withImage(func(img *image.Image) error {
			entries, err := img.FileSystem().ListPath(path)
			if err != nil {
				return err
			}
			shell.PrintEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
