package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/compress/gzip"
)

// Compression selects a tar archive's compression format.
type Compression int

const (
	// NoCompression leaves the archive uncompressed.
	NoCompression Compression = iota
	GZIP
	BZIP2
	XZ
)

func (c Compression) tarFlag() string {
	switch c {
	case GZIP:
		return "z"
	case BZIP2:
		return "j"
	case XZ:
		return "J"
	default:
		return ""
	}
}

// Facade dispatches the external-tool wrappers through a Runner. The zero
// value uses Runner{} and is ready to use, invoking "tar"/"sha512sum"/
// "wclayer" as found on PATH. TarTool/Sha512Tool/WclayerTool override those
// names, for deployments that stage a pinned binary under another path.
type Facade struct {
	// Runner dispatches the actual subprocess. Left nil, it defaults to
	// Runner{}; tests substitute a fake satisfying the same interface.
	Runner runner

	TarTool     string
	Sha512Tool  string
	WclayerTool string
}

func (f Facade) run() runner {
	if f.Runner != nil {
		return f.Runner
	}
	return Runner{}
}

func (f Facade) tarTool() string {
	if f.TarTool != "" {
		return f.TarTool
	}
	return "tar"
}

func (f Facade) sha512Tool() string {
	if f.Sha512Tool != "" {
		return f.Sha512Tool
	}
	return "sha512sum"
}

func (f Facade) wclayerTool() string {
	if f.WclayerTool != "" {
		return f.WclayerTool
	}
	return "wclayer"
}

// Tar archives input into output, optionally changing to dir first, with
// the given compression (NoCompression for a plain archive).
func (f Facade) Tar(ctx context.Context, input, output string, dir string, compression Compression) error {
	args := []string{"c" + compression.tarFlag() + "f", output}
	if dir != "" {
		args = append(args, "-C", dir)
	}
	args = append(args, input)
	if err := f.run().Run(ctx, "", f.tarTool(), args...); err != nil {
		return wrapf("tar", err)
	}
	return nil
}

// Untar extracts input into dir (empty means the current directory).
func (f Facade) Untar(ctx context.Context, input string, dir string) error {
	args := []string{"xf", input}
	if dir != "" {
		args = append(args, "-C", dir)
	}
	if err := f.run().Run(ctx, "", f.tarTool(), args...); err != nil {
		return wrapf("untar", err)
	}
	return nil
}

// Gzip compresses input into input+".gz" alongside it, leaving input itself
// in place, using
// klauspost/compress for the throughput win over stdlib compress/gzip.
func (f Facade) Gzip(ctx context.Context, input string) error {
	src, err := os.Open(input)
	if err != nil {
		return wrapf("gzip", err)
	}
	defer src.Close()

	dstPath := input + ".gz"
	dst, err := os.Create(dstPath)
	if err != nil {
		return wrapf("gzip", err)
	}

	gw := gzip.NewWriter(dst)
	_, copyErr := io.Copy(gw, src)
	closeErr := gw.Close()
	syncErr := dst.Close()

	if copyErr != nil {
		os.Remove(dstPath)
		return wrapf("gzip", copyErr)
	}
	if closeErr != nil {
		os.Remove(dstPath)
		return wrapf("gzip", closeErr)
	}
	if syncErr != nil {
		os.Remove(dstPath)
		return wrapf("gzip", syncErr)
	}

	return nil
}

// Decompress selects a format by input's file extension and decompresses
// it in place, writing the result alongside input with the extension
// stripped.
func (f Facade) Decompress(ctx context.Context, input string) error {
	switch {
	case strings.HasSuffix(input, ".gz"):
		return f.decompressGzip(input)
	default:
		return &Error{Tool: "decompress", Err: fmt.Errorf("unsupported compression extension: %s", input)}
	}
}

func (f Facade) decompressGzip(input string) error {
	src, err := os.Open(input)
	if err != nil {
		return wrapf("decompress", err)
	}
	defer src.Close()

	gr, err := gzip.NewReader(src)
	if err != nil {
		return wrapf("decompress", err)
	}
	defer gr.Close()

	dstPath := strings.TrimSuffix(input, ".gz")
	dst, err := os.Create(dstPath)
	if err != nil {
		return wrapf("decompress", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, gr); err != nil {
		os.Remove(dstPath)
		return wrapf("decompress", err)
	}

	return nil
}

// SHA512 computes the hex SHA-512 digest of input via sha512sum, parsing
// the hex digest out of its stdout ("<digest>  <path>").
func (f Facade) SHA512(ctx context.Context, input string) (string, error) {
	out, err := f.run().RunCapture(ctx, "", f.sha512Tool(), input)
	if err != nil {
		return "", wrapf("sha512", err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", &Error{Tool: f.sha512Tool(), Err: fmt.Errorf("unparsable output: %q", out)}
	}
	return fields[0], nil
}

func wrapf(tool string, err error) error {
	if cmdErr, ok := err.(*Error); ok {
		return cmdErr
	}
	return &Error{Tool: tool, Err: err}
}
