/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package image

import (
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

// RewriteImage copies the tree of srcFile into a freshly formatted
// dstFile of the given block count, packing files into the lowest free
// blocks and verifying every copied file by checksum.
func RewriteImage(fsys afero.Fs, dstFile, srcFile string, blocks int) error {
	src, err := OpenImage(fsys, srcFile)
	if err != nil {
		return Fatal(err)
	}
	defer src.Close()

	records, err := src.ScanFiles()
	if err != nil {
		return Fatal(err)
	}

	dst, err := CreateImage(fsys, dstFile, blocks)
	if err != nil {
		return Fatal(err)
	}
	defer dst.Close()

	for _, record := range records {
		if record.Dir {
			err := dst.Mkdir(record.Name)
			if err != nil {
				return Fatal(err)
			}
		} else {
			data, err := src.ReadFile(record.Name)
			if err != nil {
				return Fatal(err)
			}
			err = dst.FileSystem().CreateFile(record.Name, data)
			if err != nil {
				return Fatal(err)
			}
			sum, err := dst.Checksum(record.Name)
			if err != nil {
				return Fatal(err)
			}
			if sum != xxh3.Hash(data) {
				return Fatalf("checksum mismatch after copying %s", record.Name)
			}
		}
	}
	for _, record := range records {
		err := dst.SetAccessRights(record.Name, record.Access)
		if err != nil {
			return Fatal(err)
		}
	}
	return nil
}
