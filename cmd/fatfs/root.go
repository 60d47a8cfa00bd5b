/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rstms/fatfs/fat"
	"github.com/rstms/fatfs/image"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const Version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "fatfs",
	Short:   "block file system image tool",
	Version: Version,
	Long: `
Create, inspect and modify single volume FAT block file system images.
The image file is selected with --image, FATFS_IMAGE or the image key
of the config file.
`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/fatfs/fatfs.yaml)")
	rootCmd.PersistentFlags().StringP("image", "i", "disk.img", "image file")
	rootCmd.PersistentFlags().IntP("blocks", "b", fat.SlotCount, "block count for new images")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "log image operations")
	viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
	viper.BindPFlag("blocks", rootCmd.PersistentFlags().Lookup("blocks"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(filepath.Join(home, ".config", "fatfs"))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("fatfs")
	}
	viper.SetEnvPrefix("fatfs")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cobra.CheckErr(err)
		}
	}
	image.Debug = viper.GetBool("debug")
}

func openImage() (*image.Image, error) {
	return image.OpenImage(afero.NewOsFs(), viper.GetString("image"))
}

// withImage opens the configured image, runs fn and closes it again,
// reporting the first error.
func withImage(fn func(*image.Image) error) error {
	img, err := openImage()
	if err != nil {
		return err
	}
	err = fn(img)
	cerr := img.Close()
	if err != nil {
		return err
	}
	return cerr
}
