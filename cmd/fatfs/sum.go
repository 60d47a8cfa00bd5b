/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var sumCmd = &cobra.Command{
	Use:   "sum FILE...",
	Short: "print xxh3 checksums of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			for _, name := range args {
				sum, err := img.Checksum(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%016x  %s\n", sum, name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sumCmd)
}
