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

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "create and format the image file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := image.CreateImage(afero.NewOsFs(), viper.GetString("image"), viper.GetInt("blocks"))
		if err != nil {
			return err
		}
		return img.Close()
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
