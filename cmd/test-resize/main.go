// cmd/test-resize is a standalone CLI for exercising the thumbnail resizer
// against a local file, without the queue or blob store.
//
// Usage:
//
//	./test-resize -input photo.jpg
//	./test-resize -input photo.png -output small.jpg -size 160
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goodads/thumbnailer/internal/img"
)

func main() {
	input := flag.String("input", "", "Input image path (required)")
	output := flag.String("output", "", "Output thumbnail path (default: input_thumbnail.jpg)")
	size := flag.Int("size", img.DefaultTargetSize, "Target width in pixels")
	quality := flag.Int("quality", img.DefaultJPEGQuality, "JPEG quality (1-100)")
	flag.Parse()

	if *input == "" {
		fmt.Println("Error: -input flag is required")
		flag.Usage()
		os.Exit(1)
	}

	if *output == "" {
		ext := filepath.Ext(*input)
		*output = (*input)[:len(*input)-len(ext)] + "_thumbnail.jpg"
	}

	src, err := os.ReadFile(*input)
	if err != nil {
		fmt.Printf("Error: read %s: %v\n", *input, err)
		os.Exit(1)
	}

	thumb, contentType, err := img.Thumbnail(src, *size, *quality)
	if err != nil {
		fmt.Printf("Error: resize %s: %v\n", *input, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, thumb, 0o644); err != nil {
		fmt.Printf("Error: write %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("✅ %s -> %s (%d bytes, %s)\n", *input, *output, len(thumb), contentType)
}
