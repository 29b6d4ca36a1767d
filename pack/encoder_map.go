package pack

// Keyed containers are length-prefixed sequences of alternating key and
// value encodings. String keys and values use the string-array element
// form; numeric keys and values are fixed width; packable values use the
// record-array element form. Go map iteration order varies, so two
// encodings of one map may differ on the wire while decoding to the same
// container.

// PutStr2Str writes a string-to-string map field. A nil map is skipped.
func (e *Encoder) PutStr2Str(index byte, value map[string]string) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		e.wrapString(k)
		e.wrapString(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutStr2Int32 writes a string-to-int32 map field. A nil map is skipped.
func (e *Encoder) PutStr2Int32(index byte, value map[string]int32) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		e.wrapString(k)
		if !e.checkCapacity(4) {
			return e
		}
		e.buf.WriteInt32(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutStr2Int64 writes a string-to-int64 map field. A nil map is skipped.
func (e *Encoder) PutStr2Int64(index byte, value map[string]int64) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		e.wrapString(k)
		if !e.checkCapacity(8) {
			return e
		}
		e.buf.WriteInt64(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutStr2Float32 writes a string-to-float32 map field. A nil map is skipped.
func (e *Encoder) PutStr2Float32(index byte, value map[string]float32) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		e.wrapString(k)
		if !e.checkCapacity(4) {
			return e
		}
		e.buf.WriteFloat32(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutStr2Float64 writes a string-to-float64 map field. A nil map is skipped.
func (e *Encoder) PutStr2Float64(index byte, value map[string]float64) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		e.wrapString(k)
		if !e.checkCapacity(8) {
			return e
		}
		e.buf.WriteFloat64(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutStr2Pack writes a string-to-record map field. A nil map is skipped;
// nil record values round-trip as null.
func (e *Encoder) PutStr2Pack(index byte, value map[string]Packable) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		e.wrapString(k)
		e.wrapPackable(v)
		if e.err != nil {
			return e
		}
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutInt2Int writes an int32-to-int32 map field. A nil map is skipped.
func (e *Encoder) PutInt2Int(index byte, value map[int32]int32) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		if !e.checkCapacity(8) {
			return e
		}
		e.buf.WriteInt32(k)
		e.buf.WriteInt32(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutInt2Str writes an int32-to-string map field. A nil map is skipped.
func (e *Encoder) PutInt2Str(index byte, value map[int32]string) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for k, v := range value {
		if !e.checkCapacity(4) {
			return e
		}
		e.buf.WriteInt32(k)
		e.wrapString(v)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}
