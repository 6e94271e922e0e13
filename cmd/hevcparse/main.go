/*
DESCRIPTION
  hevcparse is a command-line front end for the hevc package: it reads an
  Annex-B HEVC bitstream from disk and reports every NAL unit the parser
  decodes.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command hevcparse parses an Annex-B HEVC bitstream file and logs the NAL
// units, parameter sets, and slice headers it finds.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/hevc/hevc"
	"github.com/ausocean/hevc/internal/logging"
)

// readChunkSize matches the source's ingest granularity: the parser does
// not reassemble NAL units split across chunk boundaries, so this is only
// safe for inputs whose NAL units are each smaller than a chunk.
const readChunkSize = 2 << 20 // 2 MiB

func main() {
	logPath := flag.String("log", "", "write logs to this file in addition to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hevcparse <input-video>")
		os.Exit(1)
	}

	var log logging.Logger
	if *logPath != "" {
		log = logging.NewFile(*logPath, 100, 5, 28)
	} else {
		log = logging.New()
	}

	if err := run(flag.Arg(0), log); err != nil {
		fmt.Fprintln(os.Stderr, "hevcparse:", err)
		os.Exit(1)
	}
}

func run(path string, log logging.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open input: %w", err)
	}
	defer f.Close()

	p := hevc.NewParser()
	buf := make([]byte, readChunkSize)
	for {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			units, perr := p.Parse(buf[:n])
			for _, u := range units {
				logUnit(log, u)
			}
			if perr != nil {
				return fmt.Errorf("parse failed: %w", perr)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not read input: %w", err)
		}
	}
}

func logUnit(log logging.Logger, u hevc.Unit) {
	switch {
	case u.VPS != nil:
		log.Info("vps", "id", u.VPS.ID)
	case u.SPS != nil:
		log.Info("sps", "id", u.SPS.ID, "width", u.SPS.PicWidthInLumaSamples, "height", u.SPS.PicHeightInLumaSamples)
	case u.PPS != nil:
		log.Info("pps", "id", u.PPS.ID, "sps_id", u.PPS.SeqParameterSetID)
	case u.SliceHeader != nil:
		log.Info("slice", "nal_type", u.Header.Type, "poc", u.POC, "first_slice", u.SliceHeader.FirstSliceSegmentInPicFlag)
	default:
		log.Debug("nal", "type", u.Header.Type)
	}
}
