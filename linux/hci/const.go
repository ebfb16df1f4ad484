package hci

import "time"

// HCI Packet types
const (
	pktTypeCommand uint8 = 0x01
	pktTypeACLData uint8 = 0x02
	pktTypeSCOData uint8 = 0x03
	pktTypeEvent   uint8 = 0x04
	pktTypeVendor  uint8 = 0xFF
)

const (
	chCmdBufChanSize    = 16
	chCmdBufElementSize = 4 + 255 // header + largest parameter block
	chCmdBufTimeout     = time.Second * 5

	defaultCmdTimeout  = 3 * time.Second
	defaultLinkTimeout = 10 * time.Second
)

// Link types of Connection Complete [Vol 2, Part E, 7.7.3].
const (
	linkTypeSCO = 0x00
	linkTypeACL = 0x01
)

// Create Connection defaults: DM1..DH5 packet types, R2 page scan, role switch allowed.
const (
	aclPacketTypes     = 0xcc18
	pageScanRepetition = 0x02
	allowRoleSwitch    = 0x01
)

// ServiceClassHID is the HID service class UUID advertised in the inquiry response.
const ServiceClassHID = 0x1124
