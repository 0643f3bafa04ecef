package backend

import (
	"errors"
	"testing"
)

func TestSoftwareBackendName(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Name() != "software" {
		t.Errorf("Name() = %q, want %q", b.Name(), "software")
	}
}

func TestSoftwareBackendInit(t *testing.T) {
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	b.Close()
}

func TestSoftwareBackendInitError(t *testing.T) {
	b := NewSoftwareBackend()
	want := errors.New("no driver")
	b.SetInitError(want)
	if err := b.Init(); !errors.Is(err, want) {
		t.Errorf("Init() error = %v, want %v", err, want)
	}
}

func TestSoftwareBackendCreateDeviceBeforeInit(t *testing.T) {
	b := NewSoftwareBackend()
	_, err := b.CreateDevice(b.Adapters()[0], nil, 0, nil)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateDevice() error = %v, want ErrNotInitialized", err)
	}
}

func TestSoftwareBackendClose(t *testing.T) {
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	d, err := b.CreateDevice(b.Adapters()[0], nil, CreateMultithreaded, nil)
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	b.Close()

	if !d.(*SoftwareDevice).Destroyed() {
		t.Error("Close() should destroy created devices")
	}
	if got := len(b.Devices()); got != 0 {
		t.Errorf("Devices() after Close = %d, want 0", got)
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	// Software backend is auto-registered via init()
	if !IsRegistered("software") {
		t.Error("software backend should be auto-registered")
	}

	b := Get("software")
	if b == nil {
		t.Fatal("Get(software) returned nil")
	}
	if b.Name() != "software" {
		t.Errorf("Get(software).Name() = %q, want %q", b.Name(), "software")
	}
}

func TestRegistryGetUnregistered(t *testing.T) {
	b := Get("nonexistent")
	if b != nil {
		t.Error("Get(nonexistent) should return nil")
	}
}

func TestRegistryAvailable(t *testing.T) {
	available := Available()
	found := false
	for _, name := range available {
		if name == "software" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Available() should include 'software'")
	}
}

func TestRegistryDefault(t *testing.T) {
	b := Default()
	if b == nil {
		t.Fatal("Default() returned nil")
	}
	// The native backend lives in its own package and is not imported here.
	if b.Name() != "software" {
		t.Errorf("Default().Name() = %q, want %q", b.Name(), "software")
	}
}

func TestRegistryInitDefault(t *testing.T) {
	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	if b == nil {
		t.Fatal("InitDefault() returned nil backend")
	}
	defer b.Close()

	// Verify it's initialized by using it
	if _, err := b.CreateDevice(b.Adapters()[0], nil, 0, nil); err != nil {
		t.Errorf("backend from InitDefault() should be usable: %v", err)
	}
}

func TestRegistryInitDefaultSkipsFailingBackend(t *testing.T) {
	Register(BackendNative, func() Backend {
		b := NewSoftwareBackend()
		b.SetInitError(errors.New("no gpu"))
		return b
	})
	defer Unregister(BackendNative)

	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	defer b.Close()
	if _, err := b.CreateDevice(b.Adapters()[0], nil, 0, nil); err != nil {
		t.Errorf("InitDefault() returned an uninitialized backend: %v", err)
	}
}

func TestRegistryUnregister(t *testing.T) {
	// Register a test backend
	testFactory := func() Backend {
		return NewSoftwareBackend()
	}
	Register("test-backend", testFactory)

	if !IsRegistered("test-backend") {
		t.Error("test-backend should be registered")
	}

	Unregister("test-backend")

	if IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}

func TestRegistryIsRegistered(t *testing.T) {
	if !IsRegistered("software") {
		t.Error("software should be registered")
	}
	if IsRegistered("nonexistent") {
		t.Error("nonexistent should not be registered")
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrDeviceLost, true},
		{ErrDeviceNotReset, true},
		{ErrDeviceHung, true},
		{ErrDeviceRemoved, false},
		{ErrInvalidCall, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsRecoverable(tt.err); got != tt.want {
			t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status Status
		want   error
	}{
		{StatusOK, nil},
		{StatusOccluded, nil},
		{StatusLost, ErrDeviceLost},
		{StatusHung, ErrDeviceHung},
		{StatusRemoved, ErrDeviceRemoved},
	}
	for _, tt := range tests {
		if got := StatusError(tt.status); got != tt.want {
			t.Errorf("StatusError(%v) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

// Benchmark tests

func BenchmarkSoftwarePresent(b *testing.B) {
	sb := NewSoftwareBackend()
	_ = sb.Init()
	defer sb.Close()

	d, _ := sb.CreateDevice(sb.Adapters()[0], nil, 0, nil)
	w := NewSoftwareWindow(800, 600)
	sc, err := d.CreateSwapChain(&PresentParameters{Width: 640, Height: 360, Format: FormatXRGB32})
	if err != nil {
		b.Fatal(err)
	}
	defer sc.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sc.Present(w.ClientRect(), w)
	}
}
