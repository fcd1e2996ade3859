/*
Package interp synthesizes an intermediate frame between two frames from a
dense optical flow field, using forward warping of the flow followed by an
occlusion-aware inverse warp of both frames.

Basic usage:

	f0 := interp.FrameFromImage(img0)
	f1 := interp.FrameFromImage(img1)

	// flow is the frame0 -> frame1 flow, e.g. loaded with flo.Load
	ip := interp.New(interp.DefaultOptions())
	frame, err := ip.Interpolate(f0, f1, flow, 0.5)
	if err != nil {
	    log.Fatal(err)
	}

	err = imaging.Save(frame.Image(), "frame05.png")

Every stage of the pipeline (FindHoles, FillHoles, WarpFlow,
EstimateOcclusions, Smoother, Composite) is exported so it can be run and
inspected on its own.
*/
package interp
