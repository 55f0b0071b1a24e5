package main

import (
	"fmt"

	"salamander/lib/algo/crypto/hkdf/vector"

	"github.com/spf13/cobra"
)

func verifyCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [vector-file...]",
		Short: "check known-answer vectors, the RFC 5869 set by default",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := flags.load(Config{Vectors: args})
		if err != nil {
			return err
		}

		vectors := vector.RFC5869()
		if len(cfg.Vectors) > 0 {
			vectors = nil
			for _, file := range cfg.Vectors {
				vs, err := vector.LoadFile(file)
				if err != nil {
					return err
				}
				logger.Debug("loaded vectors", "file", file, "count", len(vs))
				vectors = append(vectors, vs...)
			}
		}

		if err := vector.Verify(cmd.Context(), logger, vectors); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d vectors ok\n", len(vectors))
		return nil
	}

	return cmd
}
