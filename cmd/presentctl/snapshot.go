package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/present"
)

var (
	snapFrames frameFlags
	snapFrame  int
	snapOut    string
	snapRaw    bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Present the test pattern and save the frame as a bitmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshot(cmd.Context())
	},
}

func init() {
	snapFrames.register(snapshotCmd)
	snapshotCmd.Flags().IntVar(&snapFrame, "frame", 0, "pattern frame to capture")
	snapshotCmd.Flags().StringVarP(&snapOut, "out", "o", "", "output file")
	snapshotCmd.Flags().BoolVar(&snapRaw, "dib", false, "write the raw header and bottom-up rows instead of a BMP file")
	_ = snapshotCmd.MarkFlagRequired("out")
}

func snapshot(ctx context.Context) error {
	if snapFrame < 0 {
		return errors.New("--frame must not be negative")
	}
	s, err := openSession(snapFrames)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.player.Run(ctx, snapFrame+1, nil); err != nil {
		return err
	}
	snap, err := s.engine.CaptureSnapshot(present.BitmapInfoHeaderSize)
	if err != nil {
		return err
	}

	f, err := os.Create(snapOut)
	if err != nil {
		return err
	}
	if snapRaw {
		err = writeDIB(f, snap)
	} else {
		err = snap.EncodeBMP(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", snapOut, err)
	}
	logger.Info("snapshot written", "path", snapOut,
		"width", snap.Header.Width, "height", snap.Header.Height,
		"bitCount", snap.Header.BitCount, "timestamp", snap.Timestamp)
	return nil
}

func writeDIB(f *os.File, snap *present.Snapshot) error {
	hdr, err := snap.Header.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := f.Write(hdr); err != nil {
		return err
	}
	_, err = f.Write(snap.Pixels)
	return err
}
