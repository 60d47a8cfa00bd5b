/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"io"

	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "create a file from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withImage(func(img *image.Image) error {
			return img.FileSystem().CreateFile(args[0], content)
		})
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
