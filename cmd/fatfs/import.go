/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import DIR",
	Short: "copy a host directory tree into the image root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			return img.Import(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
