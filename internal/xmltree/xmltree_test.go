package xmltree

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want Tree
	}{
		{
			name: "single leaf element",
			xml:  "<g>value</g>",
			want: Tree{"g": {Leaf("value")}},
		},
		{
			name: "nested element",
			xml:  "<d><e>value4</e></d>",
			want: Tree{"d": {Subtree(Tree{"e": {Leaf("value4")}})}},
		},
		{
			name: "repeated siblings accumulate in order",
			xml:  "<r><b><bb>value1</bb></b><b><bb>value2</bb></b></r>",
			want: Tree{"r": {Subtree(Tree{
				"b": {
					Subtree(Tree{"bb": {Leaf("value1")}}),
					Subtree(Tree{"bb": {Leaf("value2")}}),
				},
			})}},
		},
		{
			name: "processing instruction skipped",
			xml:  `<?xml version="1.0"?><g>value</g>`,
			want: Tree{"g": {Leaf("value")}},
		},
		{
			name: "attributes discarded",
			xml:  `<a any_tag="tag value">text</a>`,
			want: Tree{"a": {Leaf("text")}},
		},
		{
			name: "empty element present with no children",
			xml:  "<a><c></c></a>",
			want: Tree{"a": {Subtree(Tree{"c": {}})}},
		},
		{
			name: "stray closing tag noted as empty",
			xml:  "</c>",
			want: Tree{"c": {}},
		},
		{
			name: "self-closing with space becomes None leaf",
			xml:  "<a><icon /></a>",
			want: Tree{"a": {Subtree(Tree{"icon": {Leaf("None")}})}},
		},
		{
			name: "self-closing without space becomes None leaf",
			xml:  "<a/>",
			want: Tree{"a": {Leaf("None")}},
		},
		{
			name: "surrounding whitespace trimmed",
			xml:  "  <a>\n   <b> hi </b>\n  </a>  ",
			want: Tree{"a": {Subtree(Tree{"b": {Leaf("hi")}})}},
		},
		{
			name: "empty input",
			xml:  "",
			want: Tree{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.xml)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.xml, got, tt.want)
			}
		})
	}
}

func TestParseDescriptionDocument(t *testing.T) {
	const desc = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <friendlyName>LivingRoomTV</friendlyName>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
        <controlURL>/ctrl</controlURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
        <controlURL>/rctrl</controlURL>
      </service>
    </serviceList>
  </device>
</root>`

	tree := Parse(desc)

	name, ok := QueryText(tree, "root/device/friendlyName")
	if !ok || name != "LivingRoomTV" {
		t.Errorf("friendlyName = %q, %v, want LivingRoomTV, true", name, ok)
	}

	ctrl, ok := QueryText(tree,
		"root/device/serviceList/service@serviceType=urn:schemas-upnp-org:service:AVTransport:1/controlURL")
	if !ok || ctrl != "/ctrl" {
		t.Errorf("AVTransport controlURL = %q, %v, want /ctrl, true", ctrl, ok)
	}

	rctrl, ok := QueryText(tree,
		"root/device/serviceList/service@serviceType=urn:schemas-upnp-org:service:RenderingControl:1/controlURL")
	if !ok || rctrl != "/rctrl" {
		t.Errorf("RenderingControl controlURL = %q, %v, want /rctrl, true", rctrl, ok)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"flat", "<g>value</g>"},
		{"nested", "<d><e>value4</e></d>"},
		{"siblings", "<r><b><bb>v1</bb></b><b><bb>v2</bb></b></r>"},
		{"empty element", "<a><c></c></a>"},
		{
			"description document",
			"<root><device><friendlyName>TV</friendlyName>" +
				"<serviceList><service><serviceType>st</serviceType>" +
				"<controlURL>/c</controlURL></service></serviceList>" +
				"</device></root>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Parse(tt.xml)
			second := Parse(Marshal(first))
			if !reflect.DeepEqual(first, second) {
				t.Errorf("round trip changed tree:\nfirst  = %#v\nsecond = %#v", first, second)
			}
		})
	}
}

func TestStripToXML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "http response preamble dropped",
			in:   "HTTP/1.1 200 OK\r\nContent-Type: text/xml\r\n\r\n<a>v</a>",
			want: "<a>v</a>",
		},
		{
			name: "already xml untouched",
			in:   "<a>v</a>",
			want: "<a>v</a>",
		},
		{
			name: "line kept from first angle bracket",
			in:   "garbage <a>v</a>",
			want: "<a>v</a>",
		},
		{
			name: "multiline xml joined",
			in:   "HTTP/1.1 200 OK\r\n\r\n<a>\r\n<b>v</b>\r\n</a>\r\n",
			want: "<a><b>v</b></a>",
		},
		{
			name: "no xml at all",
			in:   "HTTP/1.1 500 Internal Server Error\r\n\r\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripToXML(tt.in); got != tt.want {
				t.Errorf("StripToXML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	in := "&lt;DIDL-Lite xmlns=&quot;urn:x&quot;&gt;"
	want := `<DIDL-Lite xmlns="urn:x">`
	if got := Unescape(in); got != want {
		t.Errorf("Unescape(%q) = %q, want %q", in, got, want)
	}
}
