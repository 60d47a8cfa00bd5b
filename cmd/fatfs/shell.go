/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"os"

	"github.com/rstms/fatfs/image"
	"github.com/rstms/fatfs/shell"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "run an interactive shell on the image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			s := shell.New(img.FileSystem(), cmd.InOrStdin(), cmd.OutOrStdout())
			if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
				s.Prompt = ""
			}
			return s.Run()
		})
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
