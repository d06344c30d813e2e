// Copyright (c) OrangeTux
// Licensed under the MIT license

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OrangeTux/barrel/internal/cbmp"
	"github.com/OrangeTux/barrel/internal/dib"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/therootcompany/xz"
)

const xzMagic = "\xfd7zXZ\x00"

func convertCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert <file|glob>...",
		Short: "Convert compressed bitmaps to standard BMP files",
		Long: `Convert compressed bitmaps to standard BMP files.

Inputs that already are standard BMP files are copied through unchanged.
xz-packed inputs are unpacked first. Arguments may be doublestar globs,
e.g. 'assets/**/*.gfx'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandArgs(args)
			if err != nil {
				return err
			}
			if output != "" && len(paths) > 1 {
				return errors.New("-o only makes sense with a single input")
			}
			for _, p := range paths {
				dst := output
				if dst == "" {
					dst = strings.TrimSuffix(p, filepath.Ext(p)) + "_dumped.bmp"
				}
				if err := convertFile(p, dst); err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (single input only)")
	return cmd
}

// expandArgs resolves doublestar glob patterns; plain paths pass through
// untouched so that a nonexistent file still errors by name.
func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, m := range matches {
			paths = append(paths, filepath.Join(base, m))
		}
	}
	return paths, nil
}

func convertFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if data, err = unwrapXZ(data); err != nil {
		return err
	}

	out, copied, err := convertData(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, out, 0o666); err != nil {
		return err
	}

	msg := "converted"
	if copied {
		msg = "already a standard bitmap, copied"
	}
	log.Info().
		Str("file", src).
		Str("output", dst).
		Str("xxh64", fmt.Sprintf("%016x", xxhash.Sum64(out))).
		Msg(msg)
	return nil
}

// unwrapXZ transparently unpacks xz-compressed inputs, sniffed by magic.
func unwrapXZ(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte(xzMagic)) {
		return data, nil
	}
	r, err := xz.NewReader(bytes.NewReader(data), xz.DefaultDictMax)
	if err != nil {
		return nil, err
	}
	unpacked, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("packed", len(data)).Int("unpacked", len(unpacked)).Msg("unpacked xz container")
	return unpacked, nil
}

// convertData turns one input into standard BMP bytes. The copied result
// reports whether the input already was one.
func convertData(data []byte) (out []byte, copied bool, err error) {
	if bytes.HasPrefix(data, []byte(dib.Magic)) {
		return data, true, nil
	}

	var opts []cbmp.Option
	if verbose {
		opts = append(opts, cbmp.WithTrace(traceToken))
	}
	img, err := cbmp.Decode(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := dib.Encode(&buf, img); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), false, nil
}

func traceToken(t cbmp.Token) {
	if t.Literal {
		log.Debug().Uint8("byte", t.Value).Msg("literal")
	} else {
		log.Debug().Int("offset", t.Offset).Int("length", t.Length).Msg("back-reference")
	}
}
