package snitray

import "fmt"

// Icon is a single ARGB32 pixmap, network byte order, as carried by the
// IconPixmap/OverlayIconPixmap/AttentionIconPixmap properties and by
// tooltip and menu icon data.
type Icon struct {
	Width  int32
	Height int32
	Bytes  []byte
}

// decodeIconPixmap decodes a single "(iiay)" pixmap structure:
// [<width:int32>, <height:int32>, <bytes:[]byte>].
func decodeIconPixmap(pixmap any) (Icon, error) {
	data, ok := pixmap.([]any)
	if !ok || len(data) != 3 {
		return Icon{}, fmt.Errorf("%w: icon pixmap: expected a 3-tuple", ErrProtocolDecode)
	}

	width, ok := data[0].(int32)
	if !ok {
		return Icon{}, fmt.Errorf("%w: icon pixmap: invalid width type", ErrProtocolDecode)
	}

	height, ok := data[1].(int32)
	if !ok {
		return Icon{}, fmt.Errorf("%w: icon pixmap: invalid height type", ErrProtocolDecode)
	}

	bytes, ok := data[2].([]byte)
	if !ok {
		return Icon{}, fmt.Errorf("%w: icon pixmap: invalid pixel data type", ErrProtocolDecode)
	}

	return Icon{Width: width, Height: height, Bytes: bytes}, nil
}

// decodeIconPixmaps decodes the "a(iiay)" array carried by *IconPixmap
// properties into a list of [Icon] values.
func decodeIconPixmaps(v any) ([]Icon, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: icon pixmap array: expected a slice", ErrProtocolDecode)
	}

	icons := make([]Icon, 0, len(arr))
	for _, entry := range arr {
		icon, err := decodeIconPixmap(entry)
		if err != nil {
			return nil, err
		}
		icons = append(icons, icon)
	}
	return icons, nil
}
