// Copyright (c) OrangeTux
// Licensed under the MIT license

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/OrangeTux/barrel/internal/cbmp"
	"github.com/OrangeTux/barrel/internal/dib"
	"github.com/spf13/cobra"
)

func infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header of a compressed bitmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if data, err = unwrapXZ(data); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if bytes.HasPrefix(data, []byte(dib.Magic)) {
				fmt.Fprintf(out, "standard BMP, %d bytes\n", len(data))
				return nil
			}

			hdr, err := cbmp.DecodeHeader(bytes.NewReader(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "compressed bitmap\n")
			fmt.Fprintf(out, "dimensions:     %dx%d\n", hdr.Width, hdr.Height)
			fmt.Fprintf(out, "bits per pixel: %d\n", hdr.BitsPerPixel)
			fmt.Fprintf(out, "palette:        %d entries\n", len(hdr.Palette))
			fmt.Fprintf(out, "output stride:  %d bytes\n", hdr.Stride())
			fmt.Fprintf(out, "output size:    %d bytes\n", hdr.Stride()*hdr.Height)
			return nil
		},
	}
}
