/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var appendCmd = &cobra.Command{
	Use:   "append SRC DST",
	Short: "append the content of SRC to DST",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			return img.FileSystem().Append(args[0], args[1])
		})
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
}
