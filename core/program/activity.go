package program

// activityTypes maps activity codes to their Arabic labels.
var activityTypes = map[int]string{
	135: "التدريب - التدريب المباشر",
	155: "التدريب - التدريب الإلكتروني",
	165: "برنامج الاستثمار الأمثل (برامج قصيرة)",
	175: "برنامج الاستثمار الأمثل (برامج طويلة)",
	190: "الملتقيات - المؤتمرات",
	195: "الملتقيات - اللقاءات التربوية",
	200: "الملتقيات - المحاضرات",
	205: "الملتقيات - الندوات",
	270: "التعلم التشاركي - الزيارات الميدانية",
	55:  "ورش العمل - ورش العمل",
	65:  "التعلم التشاركي - الدروس التطبيقية",
	75:  "التعلم التشاركي - دورة بحث الدرس",
}

// ActivityLabel returns the label of an activity code, nil when the code is unknown.
func ActivityLabel(code int) *string {
	label, ok := activityTypes[code]
	if !ok {
		return nil
	}
	return &label
}
