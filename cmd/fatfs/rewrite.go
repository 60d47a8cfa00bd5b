/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/rstms/fatfs/image"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite DST",
	Short: "copy the image tree into a new image of --blocks blocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return image.RewriteImage(afero.NewOsFs(), args[0], viper.GetString("image"), viper.GetInt("blocks"))
	},
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
}
