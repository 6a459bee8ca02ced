package callmeta

import "testing"

func TestParseStem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		stem string
		want Meta
	}{
		{
			"four fields",
			"JohnSmith _ 2024-01-15 10_30am _ 5551234567 _ NotInterested",
			Meta{
				AgentName:   "John Smith",
				Timestamp:   "2024-01-15 10:30am",
				PhoneNumber: "5551234567",
				Disposition: "NotInterested",
			},
		},
		{
			"two fields",
			"MaryJones _ 5559876543",
			Meta{AgentName: "Mary Jones", PhoneNumber: "5559876543"},
		},
		{
			"bare stem",
			"BobWilliams",
			Meta{AgentName: "Bob Williams"},
		},
		{
			"single word agent",
			"recording",
			Meta{AgentName: "recording"},
		},
		{
			"three fields falls back to stem",
			"A _ B _ C",
			Meta{AgentName: "A _ B _ C"},
		},
		{
			"plain underscores are not separators",
			"John_Smith",
			Meta{AgentName: "John_Smith"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseStem(tt.stem)
			if got != tt.want {
				t.Errorf("ParseStem(%q) = %+v, want %+v", tt.stem, got, tt.want)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	got := ParseFile("/exports/Campaign East VICIdial/JohnSmith _ 5551234567.mp3")
	if got.AgentName != "John Smith" {
		t.Errorf("agent: got %q", got.AgentName)
	}
	if got.PhoneNumber != "5551234567" {
		t.Errorf("phone: got %q", got.PhoneNumber)
	}
	if got.DialerName != "VICIdial" {
		t.Errorf("dialer: got %q", got.DialerName)
	}
}

func TestParseDialer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		folder string
		want   string
	}{
		{"Campaign East VICIdial", "VICIdial"},
		{"Sales ReadyMode", "ReadyMode"},
		{"NoSpaces", ""},
		{"", ""},
		{"trailing space ", "space"},
	}
	for _, tt := range tests {
		if got := ParseDialer(tt.folder); got != tt.want {
			t.Errorf("ParseDialer(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestDisplayAgentName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"JohnSmith", "John Smith"},
		{"john", "john"},
		{"JohnSmithJr", "John Smith Jr"},
		{"Already Spaced", "Already Spaced"},
		{"McDonald", "Mc Donald"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayAgentName(tt.in); got != tt.want {
			t.Errorf("DisplayAgentName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayTimestamp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"2024-01-15 10_30am", "2024-01-15 10:30am"},
		{"2024-01-15 9_05pm", "2024-01-15 9:05pm"},
		{"2024-01-15", "2024-01-15"},
		{"10_30am", "10:30am"},
	}
	for _, tt := range tests {
		if got := DisplayTimestamp(tt.in); got != tt.want {
			t.Errorf("DisplayTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
