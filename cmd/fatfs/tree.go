/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"
	"strings"

	"github.com/rstms/fatfs/image"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "print the directory tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImage(func(img *image.Image) error {
			records, err := img.ScanFiles()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "/")
			for _, record := range records {
				depth := strings.Count(record.Name, "/")
				name := record.Name[strings.LastIndex(record.Name, "/")+1:]
				if record.Dir {
					name += "/"
				}
				fmt.Fprintf(out, "%s%s  %s %d\n", strings.Repeat("  ", depth), name, record.Access, record.Size)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
