package eir

import (
	"github.com/pkg/errors"
)

// https://www.bluetooth.com/specifications/assigned-numbers/
var types = struct {
	uuid16inc  byte
	uuid16comp byte
	nameshort  byte
	namecomp   byte
	txpwr      byte
	deviceid   byte
	mfgdata    byte
}{
	uuid16inc:  0x02,
	uuid16comp: 0x03,
	nameshort:  0x08,
	namecomp:   0x09,
	txpwr:      0x0a,
	deviceid:   0x10,
	mfgdata:    0xff,
}

var keys = struct {
	uuid16       string
	name         string
	namecomplete string
	txpwr        string
	deviceid     string
	mfgdata      string
}{
	uuid16:       "uuid16",
	name:         "name",
	namecomplete: "namecomplete",
	txpwr:        "txpwr",
	deviceid:     "deviceid",
	mfgdata:      "mfg",
}

type fieldRecord struct {
	arrayElementSz int
	minSz          int
	key            string
}

var fieldDecodeMap = map[byte]fieldRecord{
	types.uuid16inc:  {2, 2, keys.uuid16},
	types.uuid16comp: {2, 2, keys.uuid16},
	types.nameshort:  {0, 1, keys.name},
	types.namecomp:   {0, 1, keys.name},
	types.txpwr:      {0, 1, keys.txpwr},
	types.deviceid:   {0, 8, keys.deviceid},
	types.mfgdata:    {0, 2, keys.mfgdata},
}

// Parse decodes EIR data. Zero padding after the significant part is
// ignored, as are field types this package doesn't know.
func Parse(b []byte) (*Packet, error) {
	n := significant(b)
	m, err := decode(b[:n])
	if err != nil {
		return nil, errors.Wrap(err, "eir decode")
	}
	return &Packet{b: b[:n], m: m}, nil
}

// significant returns the length of b up to the first zero length field.
func significant(b []byte) int {
	i := 0
	for i < len(b) && b[i] != 0 {
		i += int(b[i]) + 1
	}
	if i > len(b) {
		return len(b)
	}
	return i
}

func getArray(size int, b []byte) ([]interface{}, error) {
	count := len(b) / size
	if len(b)%size != 0 || count == 0 {
		return nil, errors.Errorf("length %d is not a multiple of %d", len(b), size)
	}

	arr := make([]interface{}, 0, count)
	for j := 0; j < len(b); j += size {
		arr = append(arr, b[j:j+size])
	}
	return arr, nil
}

func decode(pdu []byte) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	for i := 0; i < len(pdu); {
		// length @ offset 0, covering type @ offset 1 and the data
		length := int(pdu[i])
		if length < 1 {
			return nil, errors.Errorf("invalid field length %d at %d", length, i)
		}
		if i+length >= len(pdu) {
			return nil, errors.Errorf("buffer overflow: want %v, have %v", i+length+1, len(pdu))
		}

		typ := pdu[i+1]
		data := pdu[i+2 : i+1+length]
		i += length + 1

		dec, ok := fieldDecodeMap[typ]
		if !ok {
			continue
		}
		if dec.minSz > len(data) {
			return nil, errors.Errorf("field type 0x%02x: min length %v, have %v", typ, dec.minSz, len(data))
		}

		if dec.arrayElementSz == 0 {
			m[dec.key] = data
			if typ == types.namecomp {
				m[keys.namecomplete] = true
			}
			continue
		}

		arr, err := getArray(dec.arrayElementSz, data)
		if err != nil {
			return nil, errors.Wrapf(err, "field type 0x%02x", typ)
		}
		prev, _ := m[dec.key].([]interface{})
		m[dec.key] = append(prev, arr...)
	}
	return m, nil
}
