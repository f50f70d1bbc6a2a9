package main

import (
	"fmt"
	"io"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/visualize"
)

// writePNG writes state to the PNG path of f, if one is set
func writePNG(out io.Writer, f *inspectFlags, state *etensor.Float64) error {
	if f.png == "" {
		return nil
	}
	if !f.frames {
		if err := visualize.SavePNG(state, f.png, f.scale); err != nil {
			return err
		}
	} else {
		dc, err := visualize.DrawFrames(state, f.scale)
		if err != nil {
			return err
		}
		if err := dc.SavePNG(f.png); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "wrote state:  %v\n", f.png)
	return nil
}
