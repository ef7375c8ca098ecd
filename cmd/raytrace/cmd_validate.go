package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmaddocks/raytracing"
	"github.com/hmaddocks/raytracing/runtime/render"
)

var validateBaseURL string

var validateCmd = &cobra.Command{
	Use:   "validate [scene]",
	Short: "Validate a scene definition without rendering it",
	Long: `Loads and validates a YAML scene definition, compiles its camera and
geometry, and prints a short summary. Exits non-zero when the scene is
invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateBaseURL, "base-url", "", "base URL relative scene locations resolve against")
}

func runValidate(cmd *cobra.Command, args []string) error {
	var options []raytracing.Option
	options = append(options, raytracing.WithLogger(logger))
	if validateBaseURL != "" {
		options = append(options, raytracing.WithSceneBaseURL(validateBaseURL))
	}

	srv, err := raytracing.New(options...)
	if err != nil {
		return err
	}

	aScene, err := srv.Runtime().LoadScene(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	camera, _, err := render.CompileScene(aScene)
	if err != nil {
		return err
	}

	fmt.Printf("scene:     %s\n", aScene.Name)
	fmt.Printf("image:     %dx%d, %d samples/pixel\n", camera.Width(), camera.Height(), camera.SamplesPerPixel())
	fmt.Printf("materials: %d\n", len(aScene.Materials))
	fmt.Printf("objects:   %d\n", len(aScene.Objects))
	return nil
}
