/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat FILE",
	Short: "write a file's content to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			content, err := img.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
