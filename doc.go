// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package present is a video frame presentation engine.
//
// # Overview
//
// An Engine owns a rendering device, a small pool of presentation
// surfaces and the last presented frame. A decoder asks the engine for
// frame samples sized for its output format, renders each decoded frame
// into a sample's surface and hands the sample back to Present. The engine
// shows it in a destination rectangle of the output window, keeps it for
// repaints and lets another goroutine read it back with CaptureSnapshot.
//
// # Quick Start
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	e, err := present.New(b)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer e.Close()
//
//	e.SetOutputWindow(win)
//	e.SetDestinationRect(win.ClientRect())
//
//	samples, err := e.CreateFrameSamples(&present.FrameFormat{
//		Width: 1280, Height: 720, Format: present.PixelFormatXRGB32,
//	})
//	for i := 0; ; i++ {
//		s, _ := samples.PopFront()
//		decodeInto(s.Surface())
//		e.Present(s, pts)
//		samples.PushBack(s)
//
//		if state, err := e.CheckDeviceState(); err != nil {
//			log.Fatal(err) // device removed
//		} else if state == present.DeviceReset {
//			samples, _ = e.CreateFrameSamples(&format)
//		}
//	}
//
// # Device Loss
//
// Lost and hung devices are recovered by CheckDeviceState, which callers
// poll once per frame. Until then Present absorbs the failure and fills the
// destination with the fallback color, so the window never shows stale
// pixels. Device removal is terminal: every later call reports
// ErrDeviceRemoved and the engine must be rebuilt.
//
// # Concurrency
//
// Present, CheckDeviceState and the configuration setters serialize on one
// lock. CaptureSnapshot only takes a second lock guarding the last
// presented frame, so a slow read-back never stalls presentation.
//
// # Backends
//
// The engine talks to graphics hardware through the interfaces of package
// backend. The software backend is always registered; importing
// backend/native adds the WebGPU HAL backend.
//
// # Logging
//
// The engine logs through log/slog. It is silent by default; see SetLogger
// and WithLogger.
package present
