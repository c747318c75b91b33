package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/xmlcharset"
)

type cmdopts struct {
	ContentType string `long:"content-type" description:"resolve with an HTTP Content-Type header value"`
	Default     string `long:"default-encoding" description:"charset to fall back to when nothing else resolves"`
	Strict      bool   `long:"strict" description:"fail on contradictory charset declarations instead of falling back"`
	Transcode   bool   `long:"transcode" description:"write the documents to stdout transcoded to UTF-8"`
	Version     bool   `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xmlcharset-detect: using xmlcharset version %s\n", xmlcharset.Version)
}

func showUsage() {
	fmt.Printf(`Usage : xmlcharset-detect [options] XMLfiles ...
	Report the charset each XML file is encoded in
	--version : display the version of the detection library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	options := []xmlcharset.Option{
		xmlcharset.WithLenient(!opts.Strict),
	}
	if opts.Default != "" {
		options = append(options, xmlcharset.WithDefaultEncoding(opts.Default))
	}

	if len(args) == 0 {
		return detect("-", os.Stdin, opts, options)
	}

	for _, f := range args {
		fh, err := os.Open(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		ret := detect(f, fh, opts, options)
		fh.Close()
		if ret != 0 {
			return ret
		}
	}
	return 0
}

func detect(name string, in io.Reader, opts cmdopts, options []xmlcharset.Option) int {
	var r *xmlcharset.Reader
	var err error
	if opts.ContentType != "" {
		r, err = xmlcharset.NewHTTPReader(in, opts.ContentType, options...)
	} else {
		r, err = xmlcharset.NewReader(in, options...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", name, err)
		return 1
	}

	fmt.Printf("%s: %s\n", name, r.Charset())
	if opts.Transcode {
		if _, err := io.Copy(os.Stdout, r); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", name, err)
			return 1
		}
	}
	return 0
}
