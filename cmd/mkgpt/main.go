// Binary mkgpt synthesizes the bytes of a GPT disk image from a JSON
// descriptor file.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonesinator/mkgpt"
	"github.com/jonesinator/mkgpt/internal/descriptorfile"
	"github.com/jonesinator/mkgpt/internal/imagewriter"
)

var rootCmd = &cobra.Command{
	Use:           "mkgpt",
	Short:         "synthesize GPT disk images from a JSON descriptor",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// No subcommand given: behave like running with --help.
		return pflag.ErrHelp
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "build an image file from a descriptor",
	RunE:  runBuild,
}

var buildFlags struct {
	descriptorPath string
	outPath        string
	verbose        bool
}

func init() {
	buildCmd.Flags().StringVar(&buildFlags.descriptorPath, "descriptor", "", "path to the JSON descriptor file (required)")
	buildCmd.Flags().StringVar(&buildFlags.outPath, "out", "", "path to the output image file (required)")
	buildCmd.Flags().BoolVarP(&buildFlags.verbose, "verbose", "v", false, "enable debug logging")
	_ = buildCmd.MarkFlagRequired("descriptor")
	_ = buildCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildFlags.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	raw, err := os.ReadFile(buildFlags.descriptorPath)
	if err != nil {
		return err
	}

	descriptor, err := descriptorfile.Parse(raw)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"block_size":       descriptor.BlockSize,
		"number_of_blocks": descriptor.NumberOfBlocks,
		"partitions":       len(descriptor.Partitions),
	}).Info("building GPT image")

	data, err := gpt.Build(descriptor)
	if err != nil {
		return err
	}

	if err := imagewriter.WriteFile(buildFlags.outPath, descriptor.BlockSize, descriptor.NumberOfBlocks, data); err != nil {
		return err
	}

	logrus.WithField("path", buildFlags.outPath).Info("wrote image")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
