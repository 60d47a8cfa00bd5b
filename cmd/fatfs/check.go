/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/rstms/fatfs"
	"github.com/rstms/fatfs/image"
	"github.com/rstms/fatfs/shell"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "verify image consistency without writing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := image.CheckImage(viper.GetString("image"))
		if err != nil {
			return err
		}
		shell.PrintReport(cmd.OutOrStdout(), report)
		if !report.OK() {
			return fmt.Errorf("%w: %s", fatfs.ErrCorruptLayout, viper.GetString("image"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
