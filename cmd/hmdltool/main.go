// hmdltool is a CLI utility for cooking mesh assets into the HMDL format.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/hmdl-cook/internal/config"
	"github.com/Faultbox/hmdl-cook/internal/logger"
	"github.com/Faultbox/hmdl-cook/pkg/hmdl"
	"github.com/Faultbox/hmdl-cook/pkg/mesh"
)

func main() {
	// Global flags (-config, -debug, ...) come before the subcommand.
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "cook":
		cmdCook(cfg, args)
	case "inspect":
		cmdInspect(args)
	case "collision":
		cmdCollision(args)
	case "config":
		cmdConfig(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hmdltool - HMDL mesh cooking utility

Usage:
  hmdltool [global options] <command> [options]

Global options:
  -config <file>            Explicit config file path
  -debug                    Enable debug logging
  -banks <n>                Default max skin banks
  -mode <classic|extended>  Default output mode
  -out <dir>                Default output directory

Commands:
  cook <input.glb|.gltf>      Cook a mesh into an HMDL asset
      -o <file>               Output path (default: input name with .hmdl)
      -obj <name>             Mesh node to cook (default: first mesh node)
      -banks <n>              Max skin banks per surface (0 = unlimited)
      -mode <classic|extended> Output layout variant
      -groups <n>             Material variant group count
      -secondary-uv           Import a second UV layer
      -world                  Write the world matrix into the header
      -skel <file>            Also write the skeleton section
  inspect <file.hmdl>         Summarize a cooked asset
      -mode <classic|extended> Layout variant the asset was cooked with
      -world                  Asset header carries a world matrix
  collision <input.glb>       Dump collision geometry
      -o <file>               Output path (default: input name with .kcol)
  config                      Print the effective configuration
      -save                   Write it to the user config directory
      -save-to <file>         Write it to a specific path

Examples:
  hmdltool cook hero.glb -banks 10
  hmdltool inspect hero.hmdl
  hmdltool collision level.glb -o level.kcol
  hmdltool -debug config -save`)
}

func cmdCook(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("cook", flag.ExitOnError)
	out := fs.String("o", "", "Output path")
	obj := fs.String("obj", "", "Mesh node name")
	banks := fs.Int("banks", cfg.Cook.MaxSkinBanks, "Max skin banks per surface")
	modeName := fs.String("mode", cfg.Output.Mode, "Output mode")
	groups := fs.Int("groups", cfg.Cook.MaterialGroups, "Material variant group count")
	secondaryUV := fs.Bool("secondary-uv", cfg.Cook.UseSecondaryUV, "Import a second UV layer")
	world := fs.Bool("world", cfg.Output.WorldMatrix, "Write the world matrix")
	skelPath := fs.String("skel", "", "Skeleton output path")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hmdltool cook <input.glb> [options]")
		os.Exit(1)
	}
	input := fs.Arg(0)

	mode, err := hmdl.ParseOutputMode(*modeName)
	if err != nil {
		logger.Fatal("bad output mode", zap.Error(err))
	}

	m, arm, err := mesh.LoadGLTF(input, mesh.ImportOptions{
		Object:         *obj,
		UseSecondaryUV: *secondaryUV,
	})
	if err != nil {
		logger.Fatal("loading mesh", zap.String("input", input), zap.Error(err))
	}
	logger.Info("loaded mesh",
		zap.String("name", m.Name),
		zap.Int("faces", len(m.Faces)),
		zap.Int("materials", len(m.Materials)),
		zap.Bool("skinned", m.Skinned()))

	opts := hmdl.Options{
		MaxSkinBanks:     *banks,
		Mode:             mode,
		MaterialGroups:   *groups,
		Library:          m.Materials,
		WriteWorldMatrix: *world,
	}

	// Buffer the whole asset; nothing partial ever reaches disk.
	var buf bytes.Buffer
	if err := hmdl.Cook(&buf, m, opts); err != nil {
		logger.Fatal("cook failed", zap.String("mesh", m.Name), zap.Error(err))
	}

	target := *out
	if target == "" {
		target = replaceExt(input, ".hmdl")
		if cfg.Output.Dir != "" {
			target = filepath.Join(cfg.Output.Dir, filepath.Base(target))
		}
	}
	if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
		logger.Fatal("writing asset", zap.String("path", target), zap.Error(err))
	}
	logger.Info("cooked asset",
		zap.String("path", target),
		zap.Int("bytes", buf.Len()))

	if *skelPath != "" {
		if arm == nil {
			logger.Warn("no armature to export", zap.String("input", input))
			return
		}
		var skel bytes.Buffer
		if err := hmdl.WriteSkeleton(&skel, arm); err != nil {
			logger.Fatal("skeleton export failed", zap.Error(err))
		}
		if err := os.WriteFile(*skelPath, skel.Bytes(), 0644); err != nil {
			logger.Fatal("writing skeleton", zap.String("path", *skelPath), zap.Error(err))
		}
		logger.Info("wrote skeleton",
			zap.String("path", *skelPath),
			zap.Int("bones", len(arm.Bones)))
	}
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	modeName := fs.String("mode", "classic", "Layout variant")
	world := fs.Bool("world", false, "Header carries a world matrix")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hmdltool inspect <file.hmdl> [options]")
		os.Exit(1)
	}

	mode, err := hmdl.ParseOutputMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	info, err := hmdl.Inspect(data, mode, *world)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Asset:     %s\n", fs.Arg(0))
	fmt.Printf("Bounds:    (%.3f %.3f %.3f) .. (%.3f %.3f %.3f)\n",
		info.BBoxMin[0], info.BBoxMin[1], info.BBoxMin[2],
		info.BBoxMax[0], info.BBoxMax[1], info.BBoxMax[2])
	fmt.Printf("Vertices:  %d (%d UV layers, %d loops)\n",
		info.VertCount, info.UVLayers, info.LoopCount)
	fmt.Printf("Surfaces:  %d\n", len(info.Surfaces))
	for i, s := range info.Surfaces {
		fmt.Printf("  [%d] material %d, %d faces, %d skin groups\n",
			i, s.Material, s.FaceCount, s.SkinGroups)
	}
	for g, mats := range info.Groups {
		fmt.Printf("Group %d:\n", g)
		for _, mat := range mats {
			line := fmt.Sprintf("  %s (%d textures)", mat.Name, len(mat.Textures))
			if mat.Transparent {
				line += " [transparent]"
			}
			fmt.Println(line)
		}
	}
	if len(info.Props) > 0 {
		fmt.Println("Properties:")
		for _, p := range info.Props {
			fmt.Printf("  %s = %s\n", p.Key, p.Value)
		}
	}
}

func cmdCollision(args []string) {
	fs := flag.NewFlagSet("collision", flag.ExitOnError)
	out := fs.String("o", "", "Output path")
	obj := fs.String("obj", "", "Mesh node name")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hmdltool collision <input.glb> [options]")
		os.Exit(1)
	}
	input := fs.Arg(0)

	m, _, err := mesh.LoadGLTF(input, mesh.ImportOptions{Object: *obj})
	if err != nil {
		logger.Fatal("loading mesh", zap.String("input", input), zap.Error(err))
	}

	// Flags default to solid one-sided surfaces; authoring tools can carry
	// richer data through material int props later.
	flags := make([]hmdl.SurfaceFlags, len(m.Materials))

	var buf bytes.Buffer
	if err := hmdl.WriteCollision(&buf, m, flags); err != nil {
		logger.Fatal("collision export failed", zap.Error(err))
	}

	target := *out
	if target == "" {
		target = replaceExt(input, ".kcol")
	}
	if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
		logger.Fatal("writing collision", zap.String("path", target), zap.Error(err))
	}
	logger.Info("wrote collision",
		zap.String("path", target),
		zap.Int("bytes", buf.Len()))
}

func cmdConfig(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Write to the user config directory")
	saveTo := fs.String("save-to", "", "Write to a specific path")
	fs.Parse(args)

	fmt.Printf("max_skin_banks:  %d\n", cfg.Cook.MaxSkinBanks)
	fmt.Printf("material_groups: %d\n", cfg.Cook.MaterialGroups)
	fmt.Printf("output mode:     %s\n", cfg.Output.Mode)
	fmt.Printf("output dir:      %s\n", cfg.Output.Dir)
	fmt.Printf("log level:       %s\n", cfg.Logging.Level)

	switch {
	case *saveTo != "":
		if err := cfg.SaveTo(*saveTo); err != nil {
			logger.Fatal("saving config", zap.String("path", *saveTo), zap.Error(err))
		}
		logger.Info("wrote config", zap.String("path", *saveTo))
	case *save:
		if err := cfg.Save(); err != nil {
			logger.Fatal("saving config", zap.Error(err))
		}
		logger.Info("wrote config", zap.String("dir", config.ConfigDir()))
	}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
