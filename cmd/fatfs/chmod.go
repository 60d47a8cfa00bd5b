/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs"
	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var chmodCmd = &cobra.Command{
	Use:   "chmod RIGHTS PATH",
	Short: "set access rights (octal digit or rwx string)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rights, err := fatfs.ParseAccessRights(args[0])
		if err != nil {
			return err
		}
		return withImage(func(img *image.Image) error {
			return img.SetAccessRights(args[1], rights)
		})
	},
}

func init() {
	rootCmd.AddCommand(chmodCmd)
}
