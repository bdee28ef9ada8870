package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// DefaultFreq is the WS2812 bit rate.
const DefaultFreq = 800 * physic.KiloHertz

// SPIConfig selects the port and the NRZ timing.
type SPIConfig struct {
	Dev        string // spireg name, e.g. "/dev/spidev0.0" or "" for the first port
	Count      int
	ColorOrder string // wire order, "GRB" for WS2812
	FreqHz     int    // NRZ bit rate, 0 means 800kHz
}

// SPI drives a WS2812 chain from the MOSI line through nrzled, which
// expects RGB input and emits GRB on the wire.
type SPI struct {
	mu    sync.Mutex
	port  spi.PortCloser
	dev   *nrzled.Dev
	count int
	perm  [3]int // input offset fed to nrzled for each of its RGB slots
	buf   []byte
}

// OpenSPI initializes the host drivers and opens cfg.Dev through the spi registry.
func OpenSPI(cfg SPIConfig) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(cfg.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", cfg.Dev, err)
	}
	s, err := NewSPI(p, cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI connects to an already opened port and blanks the chain.
func NewSPI(p spi.PortCloser, cfg SPIConfig) (*SPI, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", cfg.Count)
	}
	order, err := parseOrder(cfg.ColorOrder)
	if err != nil {
		return nil, err
	}
	freq := DefaultFreq
	if cfg.FreqHz > 0 {
		freq = physic.Frequency(cfg.FreqHz) * physic.Hertz
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: cfg.Count,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return &SPI{
		port:  p,
		dev:   d,
		count: cfg.Count,
		perm:  feedOrder(order),
		buf:   make([]byte, cfg.Count*3),
	}, nil
}

func parseOrder(o string) ([3]int, error) {
	if o == "" {
		o = "GRB"
	}
	var out [3]int
	if len(o) != 3 {
		return out, fmt.Errorf("color order %q: want three of R, G, B", o)
	}
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		switch o[i] {
		case 'R':
			out[i] = 0
		case 'G':
			out[i] = 1
		case 'B':
			out[i] = 2
		default:
			return out, fmt.Errorf("color order %q: unknown channel %q", o, o[i])
		}
		if seen[o[i]] {
			return out, fmt.Errorf("color order %q: repeated channel %q", o, o[i])
		}
		seen[o[i]] = true
	}
	return out, nil
}

// feedOrder maps a wire order onto nrzled's fixed RGB to GRB swap: the byte
// nrzled sends first is its G input, then R, then B.
func feedOrder(wire [3]int) [3]int {
	return [3]int{wire[1], wire[0], wire[2]}
}

// Write takes len(rgb)==3*count.
func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev == nil {
		return fmt.Errorf("spi closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	for i := 0; i < s.count; i++ {
		px := rgb[i*3 : i*3+3]
		dst := s.buf[i*3 : i*3+3]
		for slot, ch := range s.perm {
			dst[slot] = px[ch]
		}
	}
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	_ = s.dev.Halt()
	err := s.port.Close()
	s.port, s.dev = nil, nil
	return err
}
