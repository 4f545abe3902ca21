package policy

import "testing"

func benchmarkPolicy() *Policy {
	return NewPolicy(
		[]Factor{1, 3, 7, 12, 40},
		PermissionMap{
			1:  {1},
			2:  {1, 3},
			3:  {1, 3},
			4:  {7, 12},
			5:  nil,
			60: {1, 3, 7, 12, 40},
		},
	)
}

func BenchmarkSerialize(b *testing.B) {
	p := benchmarkPolicy()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Serialize(p); err != nil {
			b.Fatalf("serialize failed: %v", err)
		}
	}
}

func BenchmarkDeserialize(b *testing.B) {
	s, err := Serialize(benchmarkPolicy())
	if err != nil {
		b.Fatalf("serialize failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Deserialize(s); err != nil {
			b.Fatalf("deserialize failed: %v", err)
		}
	}
}

func BenchmarkIsGrantedCached(b *testing.B) {
	p := benchmarkPolicy()
	p.IsGranted(60)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d := p.IsGranted(60); d != Granted {
			b.Fatalf("IsGranted(60) = %v", d)
		}
	}
}

func BenchmarkEncodeUintSmall(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeUint(uint32(i) & 1023)
	}
}
