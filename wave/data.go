package wave

// WaveletData is the wire snapshot of a wavelet, as carried in event
// bundles and fetch responses.
type WaveletData struct {
	CreationTime     int64             `json:"creationTime"`
	Creator          string            `json:"creator"`
	LastModifiedTime int64             `json:"lastModifiedTime"`
	Participants     []string          `json:"participants"`
	RootBlipID       string            `json:"rootBlipId"`
	Title            string            `json:"title"`
	Version          int64             `json:"version"`
	WaveID           string            `json:"waveId"`
	WaveletID        string            `json:"waveletId"`
	DataDocuments    map[string]string `json:"dataDocuments"`
	Tags             []string          `json:"tags"`
}

// BlipData is the wire snapshot of a blip.
type BlipData struct {
	Annotations      []Annotation    `json:"annotations"`
	Elements         map[int]Element `json:"elements"`
	BlipID           string          `json:"blipId"`
	ChildBlipIDs     []string        `json:"childBlipIds"`
	Content          string          `json:"content"`
	Contributors     []string        `json:"contributors"`
	Creator          string          `json:"creator"`
	CreationTime     int64           `json:"creationTime"`
	LastModifiedTime int64           `json:"lastModifiedTime"`
	ParentBlipID     string          `json:"parentBlipId"`
	Version          int64           `json:"version"`
	WaveID           string          `json:"waveId"`
	WaveletID        string          `json:"waveletId"`
}

// Serialize captures the wavelet's current attributes as a wire snapshot.
// Collection fields are copied; mutating the snapshot does not affect the
// mirror.
func (w *Wavelet) Serialize() *WaveletData {
	data := &WaveletData{
		CreationTime:     w.creationTime,
		Creator:          w.creator,
		LastModifiedTime: w.lastModifiedTime,
		Participants:     w.participants.slice(),
		RootBlipID:       w.rootBlipID,
		Title:            w.title,
		Version:          w.version,
		WaveID:           w.waveID,
		WaveletID:        w.waveletID,
		DataDocuments:    make(map[string]string, len(w.dataDocuments)),
		Tags:             append([]string(nil), w.tags...),
	}
	for name, value := range w.dataDocuments {
		data.DataDocuments[name] = value
	}
	return data
}

// DeserializeWavelet reconstructs a wavelet mirror from a wire snapshot.
// The given blip table becomes the wavelet's table; blips deserialized
// afterwards with DeserializeBlip should be placed into the same table.
func DeserializeWavelet(queue *OperationQueue, blips map[string]*Blip, data *WaveletData) *Wavelet {
	if blips == nil {
		blips = make(map[string]*Blip)
	}
	w := &Wavelet{
		waveID:           data.WaveID,
		waveletID:        data.WaveletID,
		creator:          data.Creator,
		creationTime:     data.CreationTime,
		lastModifiedTime: data.LastModifiedTime,
		title:            data.Title,
		version:          data.Version,
		rootBlipID:       data.RootBlipID,
		participants:     newParticipantSet(data.Participants...),
		dataDocuments:    make(map[string]string, len(data.DataDocuments)),
		tags:             append([]string(nil), data.Tags...),
		blips:            blips,
		queue:            queue,
	}
	for name, value := range data.DataDocuments {
		w.dataDocuments[name] = value
	}
	return w
}

// Serialize captures the blip's current attributes as a wire snapshot.
func (b *Blip) Serialize() *BlipData {
	data := &BlipData{
		Annotations:      append([]Annotation(nil), b.annotations...),
		Elements:         make(map[int]Element, len(b.elements)),
		BlipID:           b.blipID,
		ChildBlipIDs:     append([]string(nil), b.childBlipIDs...),
		Content:          b.content,
		Contributors:     append([]string(nil), b.contributors...),
		Creator:          b.creator,
		CreationTime:     b.creationTime,
		LastModifiedTime: b.lastModifiedTime,
		ParentBlipID:     b.parentBlipID,
		Version:          b.version,
		WaveID:           b.waveID,
		WaveletID:        b.waveletID,
	}
	for offset, element := range b.elements {
		data.Elements[offset] = element
	}
	return data
}

// DeserializeBlip reconstructs a blip mirror from a wire snapshot, indexing
// it into the given shared blip table.
func DeserializeBlip(queue *OperationQueue, blips map[string]*Blip, data *BlipData) *Blip {
	b := &Blip{
		blipID:           data.BlipID,
		waveID:           data.WaveID,
		waveletID:        data.WaveletID,
		creator:          data.Creator,
		creationTime:     data.CreationTime,
		lastModifiedTime: data.LastModifiedTime,
		version:          data.Version,
		content:          data.Content,
		parentBlipID:     data.ParentBlipID,
		childBlipIDs:     append([]string(nil), data.ChildBlipIDs...),
		contributors:     append([]string(nil), data.Contributors...),
		annotations:      append([]Annotation(nil), data.Annotations...),
		elements:         make(map[int]Element, len(data.Elements)),
		blips:            blips,
		queue:            queue,
	}
	for offset, element := range data.Elements {
		b.elements[offset] = element
	}
	blips[b.blipID] = b
	return b
}
