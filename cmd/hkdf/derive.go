package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"salamander/lib/algo/crypto/hkdf"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type deriveOptions struct {
	ikm      string
	salt     string
	info     string
	infoText string
	length   uint
	showPRK  bool
}

func deriveCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "derive output keying material",
		Args:  cobra.NoArgs,
	}

	var opts deriveOptions
	var encoding string
	cmd.Flags().StringVar(&opts.ikm, "ikm", "", "input keying material (hex)")
	cmd.Flags().StringVar(&opts.salt, "salt", "", "salt (hex), defaults to zeros")
	cmd.Flags().StringVar(&opts.info, "info", "", "context info (hex)")
	cmd.Flags().StringVar(&opts.infoText, "info-text", "", "context info (text)")
	cmd.Flags().UintVar(&opts.length, "length", hkdf.HashSize, "output length in bytes")
	cmd.Flags().BoolVar(&opts.showPRK, "prk", false, "print the extracted pseudorandom key too")
	cmd.Flags().StringVar(&encoding, "encoding", "", "output encoding (one of hex|base64)")
	cmd.MarkFlagsMutuallyExclusive("info", "info-text")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := flags.load(Config{Encoding: encoding})
		if err != nil {
			return err
		}

		encode, err := encoder(cfg.Encoding)
		if err != nil {
			return err
		}

		logger.Debug("deriving", "length", opts.length)
		return derive(cmd.OutOrStdout(), opts, encode)
	}

	return cmd
}

func derive(w io.Writer, opts deriveOptions, encode func([]byte) string) error {
	ikm, err := hex.DecodeString(opts.ikm)
	if err != nil {
		return errors.Wrap(err, "decoding ikm")
	}
	salt, err := hex.DecodeString(opts.salt)
	if err != nil {
		return errors.Wrap(err, "decoding salt")
	}
	info := []byte(opts.infoText)
	if opts.info != "" {
		if info, err = hex.DecodeString(opts.info); err != nil {
			return errors.Wrap(err, "decoding info")
		}
	}

	if opts.showPRK {
		prk := hkdf.Extract(salt, ikm)
		fmt.Fprintf(w, "prk: %s\n", encode(prk))
		clear(prk)
	}

	okm, err := hkdf.DeriveSecrets(ikm, salt, info, opts.length)
	if err != nil {
		return err
	}
	defer clear(okm)

	if opts.showPRK {
		fmt.Fprintf(w, "okm: %s\n", encode(okm))
	} else {
		fmt.Fprintln(w, encode(okm))
	}
	return nil
}

func encoder(name string) (func([]byte) string, error) {
	switch name {
	case "hex", "":
		return hex.EncodeToString, nil
	case "base64":
		return base64.StdEncoding.EncodeToString, nil
	default:
		return nil, errors.Errorf("'%s' is not a valid encoding (one of hex|base64)", name)
	}
}
