package hci

import (
	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/eir"
	"github.com/rigado/procon/linux/hci/cmd"
)

func bool8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SetScanEnable turns inquiry and page scans on or off.
func (h *HCI) SetScanEnable(enabled bool) error {
	v := uint8(cmd.NoScans)
	if enabled {
		v = cmd.InquiryAndPageScan
	}
	return h.Send(&cmd.WriteScanEnable{ScanEnable: v}, nil)
}

// ScanEnabled reports whether any scan is enabled.
func (h *HCI) ScanEnabled() (bool, error) {
	rp := cmd.ReadScanEnableRP{}
	if err := h.Send(&cmd.ReadScanEnable{}, &rp); err != nil {
		return false, err
	}
	return rp.ScanEnable != cmd.NoScans, nil
}

// ConfigureIdentity writes the local name, class of device, pairing modes and
// the extended inquiry response.
func (h *HCI) ConfigureIdentity(id procon.Identity) error {
	var name cmd.WriteLocalName
	if len(id.Name) >= len(name.LocalName) {
		return errors.Errorf("device name %q too long", id.Name)
	}
	copy(name.LocalName[:], id.Name)

	cod := cmd.WriteClassOfDevice{
		ClassOfDevice: [3]byte{byte(id.Class), byte(id.Class >> 8), byte(id.Class >> 16)},
	}

	p, err := eir.NewPacket(eir.Name(id.Name), eir.AllUUID16(ServiceClassHID))
	if err != nil {
		return errors.Wrap(err, "can't build inquiry response")
	}
	var ir cmd.WriteExtendedInquiryResponse
	copy(ir.ExtendedInquiryResponse[:], p.Padded())

	cc := []Command{
		&name,
		&cod,
		&cmd.WriteAuthenticationEnable{AuthenticationEnable: bool8(id.Authentication)},
		&cmd.WriteSimplePairingMode{SimplePairingMode: bool8(id.SimplePairing)},
	}
	if id.SimplePairingDebug {
		cc = append(cc, &cmd.WriteSimplePairingDebugMode{DebugMode: 1})
	}
	cc = append(cc, &ir)

	for _, c := range cc {
		if err := h.Send(c, nil); err != nil {
			return err
		}
	}
	h.log.Infof("identity %q class 0x%06x", id.Name, id.Class)
	return nil
}
