package command

import "context"

// WclayerCreate creates a new writable scratch layer at scratchDir on top
// of layers (base layer last, per wclayer convention).
func (f Facade) WclayerCreate(ctx context.Context, scratchDir string, layers []string) error {
	args := append([]string{"create", scratchDir}, layerFlags(layers)...)
	if err := f.run().Run(ctx, "", f.wclayerTool(), args...); err != nil {
		return wrapf("wclayer create", err)
	}
	return nil
}

// WclayerImport imports a layer tarball into dir, parented on layers (base
// last).
func (f Facade) WclayerImport(ctx context.Context, dir, input string, layers []string) error {
	args := append([]string{"import", dir, input}, layerFlags(layers)...)
	if err := f.run().Run(ctx, "", f.wclayerTool(), args...); err != nil {
		return wrapf("wclayer import", err)
	}
	return nil
}

// WclayerExport exports dir to output as a tarball, parented on layers
// (base last); gzip requests compressed output.
func (f Facade) WclayerExport(ctx context.Context, dir, output string, layers []string, gzipOutput bool) error {
	args := []string{"export", dir, "-o", output}
	if gzipOutput {
		args = append(args, "--gzip")
	}
	args = append(args, layerFlags(layers)...)
	if err := f.run().Run(ctx, "", f.wclayerTool(), args...); err != nil {
		return wrapf("wclayer export", err)
	}
	return nil
}

// WclayerMount mounts scratch as the merged view of layers (base last).
func (f Facade) WclayerMount(ctx context.Context, scratch string, layers []string) error {
	args := append([]string{"mount", scratch}, layerFlags(layers)...)
	if err := f.run().Run(ctx, "", f.wclayerTool(), args...); err != nil {
		return wrapf("wclayer mount", err)
	}
	return nil
}

// WclayerUnmount unmounts dir.
func (f Facade) WclayerUnmount(ctx context.Context, dir string) error {
	if err := f.run().Run(ctx, "", f.wclayerTool(), "unmount", dir); err != nil {
		return wrapf("wclayer unmount", err)
	}
	return nil
}

// WclayerRemove permanently removes a layer directory in its entirety.
func (f Facade) WclayerRemove(ctx context.Context, dir string) error {
	if err := f.run().Run(ctx, "", f.wclayerTool(), "remove", dir); err != nil {
		return wrapf("wclayer remove", err)
	}
	return nil
}

func layerFlags(layers []string) []string {
	args := make([]string, 0, len(layers)*2)
	for _, l := range layers {
		args = append(args, "-l", l)
	}
	return args
}
