package fix

import (
	"strconv"
	"testing"
	"time"
)

func benchmarkFields(n int) []Field {
	fields := []Field{
		NewField(TagMsgType, "8"), NewField(TagMsgSeqNum, "1024"),
		NewField(TagSenderCompID, "BROKER"), NewField(TagTargetCompID, "ALICE"),
		NewField(TagSendingTime, "20240101-12:00:00.000"),
	}
	for i := 0; i < n; i++ {
		fields = append(fields, NewField(5000+i, "value-"+strconv.Itoa(i)))
	}

	return fields
}

func benchmarkParse(b *testing.B, n int) {
	frame, err := Build(FIX44, benchmarkFields(n))
	if err != nil {
		b.Fatal(err)
	}

	var msg Message
	b.ReportAllocs()
	b.SetBytes(int64(len(frame)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseMessage(&msg, frame); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseMessage_10(b *testing.B)  { benchmarkParse(b, 10) }
func BenchmarkParseMessage_100(b *testing.B) { benchmarkParse(b, 100) }

func BenchmarkParse_NewMessage(b *testing.B) {
	frame, err := Build(FIX44, benchmarkFields(10))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Parse(frame); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_10(b *testing.B) {
	fields := benchmarkFields(10)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(FIX44, fields); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuilder_Reuse(b *testing.B) {
	builder := NewBuilder(FIX44)
	now := time.Now()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.Reset()
		_, err := builder.AddString(TagMsgType, "0").
			AddUint(TagMsgSeqNum, uint64(i)).
			AddString(TagSenderCompID, "ALICE").
			AddString(TagTargetCompID, "BROKER").
			AddTime(TagSendingTime, now).
			Build()
		if err != nil {
			b.Fatal(err)
		}
	}
}
