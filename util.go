package seal

import "github.com/sealproto/seal/pkg/crypto/keyschedule"

func splitBytes(bytes []byte, splitLen int) [][]byte {
	splitBytes := make([][]byte, 0)
	numBytes := len(bytes)
	for i := 0; i < numBytes; i += splitLen {
		j := i + splitLen
		if j > numBytes {
			j = numBytes
		}

		splitBytes = append(splitBytes, bytes[i:j])
	}

	return splitBytes
}

func reservedExportLabels() map[string]struct{} {
	return map[string]struct{}{
		keyschedule.LabelClientWrite:    {},
		keyschedule.LabelClientWriteIV:  {},
		keyschedule.LabelServerWrite:    {},
		keyschedule.LabelServerWriteIV:  {},
		keyschedule.LabelClientFinished: {},
		keyschedule.LabelServerFinished: {},
		keyschedule.LabelExporter:       {},
	}
}
