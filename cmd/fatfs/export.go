/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export DIR",
	Short: "copy the image tree into a host directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			return img.Export(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
