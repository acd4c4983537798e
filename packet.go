package dutyradio

// lengthCRC is the hardware CRC trailer size included in every frame.
const lengthCRC = 2

// PacketLength is the fixed frame size used by the duty-cycle loop,
// CRC included. The transceiver's maximum frame is 2047 bytes.
const PacketLength = 2043 + lengthCRC

// Packet is the single reusable frame buffer. The duty-cycle loop is its
// only owner: it is refilled in place before every transmit and overwritten
// in place by every completed receive, so the quality metadata always
// describes the current contents.
type Packet struct {
	buf    [PacketLength]byte
	length int
	rssi   int8
	lqi    uint8
	crcOK  bool
}

// FillTransmit resets the packet to full capacity with every byte set to
// fill, and clears the receive metadata.
func (p *Packet) FillTransmit(fill byte) {
	p.length = PacketLength
	for i := range p.buf {
		p.buf[i] = fill
	}
	p.rssi = 0
	p.lqi = 0
	p.crcOK = false
}

// CaptureFrom overwrites the packet with the frame the radio just received.
// Prior contents are discarded.
func (p *Packet) CaptureFrom(r Radio) error {
	info, err := r.ReceivedFrame(p.buf[:])
	if err != nil {
		return err
	}
	if info.Length > PacketLength {
		info.Length = PacketLength
	}
	p.length = info.Length
	p.rssi = info.RSSI
	p.lqi = info.LQI
	p.crcOK = info.CRCOK
	return nil
}

// Bytes returns the live payload slice, length bytes long. The slice
// aliases the packet's internal buffer.
func (p *Packet) Bytes() []byte {
	return p.buf[:p.length]
}

// Length returns the current frame length in bytes.
func (p *Packet) Length() int { return p.length }

// RSSI returns the signal strength sample of the last received frame.
func (p *Packet) RSSI() int8 { return p.rssi }

// LQI returns the link quality sample of the last received frame.
func (p *Packet) LQI() uint8 { return p.lqi }

// CRCOK reports whether the last received frame passed the CRC check.
// The duty-cycle loop records it but never branches on it.
func (p *Packet) CRCOK() bool { return p.crcOK }
