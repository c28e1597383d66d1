package realtime

// Client request frames for the realtime websocket protocol. One JSON
// record per websocket message; the "type" tag selects the request.

type clientSessionUpdate struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

// SessionConfig is the session.update payload negotiated at connect time.
type SessionConfig struct {
	Modalities              []string            `json:"modalities"`
	Instructions            string              `json:"instructions,omitempty"`
	Voice                   string              `json:"voice,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *TranscriptionModel `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection      `json:"turn_detection,omitempty"`
}

// TranscriptionModel selects the model used to transcribe user audio.
type TranscriptionModel struct {
	Model string `json:"model"`
}

// TurnDetection configures the remote agent's voice-activity detector.
type TurnDetection struct {
	Type              string `json:"type"`
	Eagerness         string `json:"eagerness,omitempty"`
	InterruptResponse bool   `json:"interrupt_response"`
	CreateResponse    bool   `json:"create_response"`
}

// DefaultTurnDetection returns the semantic VAD configuration used for
// audio sessions: the server decides turn boundaries, interrupts its own
// response on user speech, and starts response turns itself.
func DefaultTurnDetection() *TurnDetection {
	return &TurnDetection{
		Type:              "semantic_vad",
		Eagerness:         "auto",
		InterruptResponse: true,
		CreateResponse:    true,
	}
}

type clientItemCreate struct {
	Type           string           `json:"type"`
	PreviousItemID string           `json:"previous_item_id,omitempty"`
	Item           conversationItem `json:"item"`
}

type conversationItem struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []itemContent `json:"content"`
}

type itemContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type clientResponseCreate struct {
	Type     string          `json:"type"`
	Response responseOptions `json:"response"`
}

type responseOptions struct {
	Modalities []string `json:"modalities"`
}

type clientAudioAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

type clientResponseCancel struct {
	Type string `json:"type"`
}

type clientItemTruncate struct {
	Type         string `json:"type"`
	ItemID       string `json:"item_id,omitempty"`
	ContentIndex int    `json:"content_index"`
	AudioEndMS   int    `json:"audio_end_ms"`
}

// Server event wire shapes. Only the fields the client consumes are
// declared; everything else rides along in the raw payload.

type serverEnvelope struct {
	Type string `json:"type"`
}

type serverSession struct {
	Session struct {
		ID string `json:"id"`
	} `json:"session"`
}

type serverItem struct {
	PreviousItemID string `json:"previous_item_id"`
	Item           struct {
		ID string `json:"id"`
	} `json:"item"`
}

type serverSpeech struct {
	AudioStartMS int64  `json:"audio_start_ms"`
	AudioEndMS   int64  `json:"audio_end_ms"`
	ItemID       string `json:"item_id"`
}

type serverResponse struct {
	Response struct {
		ID string `json:"id"`
	} `json:"response"`
}

type serverDelta struct {
	Delta string `json:"delta"`
}

type serverTextDone struct {
	Text string `json:"text"`
}

type serverError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
