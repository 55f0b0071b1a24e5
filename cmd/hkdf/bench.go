package main

import (
	"fmt"
	"time"

	"salamander/lib/algo/crypto/hkdf"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
)

func benchCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "measure derivation throughput",
		Args:  cobra.NoArgs,
	}

	count := cmd.Flags().Int("count", 10000, "number of derivations")
	length := cmd.Flags().Uint("length", 2*hkdf.HashSize, "output length in bytes")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		_, logger, err := flags.load(Config{})
		if err != nil {
			return err
		}

		res, err := bench(clock.New(), *count, *length)
		if err != nil {
			return err
		}
		logger.Debug("bench done", "count", res.count, "elapsed", res.elapsed)
		fmt.Fprintln(cmd.OutOrStdout(), res)
		return nil
	}

	return cmd
}

type benchResult struct {
	count   int
	length  uint
	elapsed time.Duration
}

func (r benchResult) perSecond() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.count) / r.elapsed.Seconds()
}

func (r benchResult) String() string {
	return fmt.Sprintf("%d derivations of %d bytes in %s (%.0f/s)",
		r.count, r.length, r.elapsed, r.perSecond())
}

func bench(clk clock.Clock, count int, length uint) (benchResult, error) {
	ikm := make([]byte, hkdf.HashSize)
	info := []byte("bench")
	okm := make([]byte, min(length, hkdf.MaxOutputSize))
	defer clear(okm)

	start := clk.Now()
	for i := 0; i < count; i++ {
		ikm[0] = byte(i)
		if err := hkdf.DeriveSecretsInto(okm, ikm, nil, info, length); err != nil {
			return benchResult{}, err
		}
	}

	return benchResult{
		count:   count,
		length:  length,
		elapsed: clk.Since(start),
	}, nil
}
