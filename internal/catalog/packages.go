package catalog

const placeholderImage = "/api/placeholder/400/300"

func price(v float64) *float64 { return &v }

func builtinPackages() []HealthPackage {
	return []HealthPackage{
		{
			ID:            "1",
			Name:          "Basic Health Checkup",
			Description:   "Essential health screening for early detection and prevention",
			Price:         299,
			OriginalPrice: price(399),
			Duration:      "2-3 hours",
			Category:      "Basic",
			Featured:      true,
			Image:         placeholderImage,
			Inclusions: []string{
				"Complete Blood Count (CBC)",
				"Blood Sugar (Fasting)",
				"Blood Pressure Check",
				"BMI Assessment",
				"Doctor Consultation",
				"Health Report within 24 hours",
			},
		},
		{
			ID:            "2",
			Name:          "Comprehensive Health Package",
			Description:   "Complete health assessment with advanced diagnostics",
			Price:         599,
			OriginalPrice: price(799),
			Duration:      "4-5 hours",
			Category:      "Comprehensive",
			Featured:      true,
			Image:         placeholderImage,
			Inclusions: []string{
				"All Basic Package tests",
				"Lipid Profile",
				"Liver Function Tests",
				"Kidney Function Tests",
				"Thyroid Function Tests",
				"ECG",
				"Chest X-Ray",
				"Specialist Consultation",
				"Nutritionist Consultation",
			},
		},
		{
			ID:            "3",
			Name:          "Executive Health Checkup",
			Description:   "Premium health package for busy professionals",
			Price:         999,
			OriginalPrice: price(1299),
			Duration:      "6-8 hours",
			Category:      "Premium",
			Featured:      true,
			Image:         placeholderImage,
			Inclusions: []string{
				"All Comprehensive Package tests",
				"MRI Brain Scan",
				"CT Chest Scan",
				"Stress Test",
				"Echo Cardiogram",
				"Tumor Markers",
				"Advanced Lipid Profile",
				"Vitamin D & B12",
				"Multiple Specialist Consultations",
				"Dedicated Health Manager",
			},
		},
		{
			ID:            "4",
			Name:          "Women's Health Package",
			Description:   "Specialized health screening designed for women",
			Price:         449,
			OriginalPrice: price(599),
			Duration:      "3-4 hours",
			Category:      "Specialized",
			Image:         placeholderImage,
			Inclusions: []string{
				"Complete Blood Count",
				"Hormonal Assessment",
				"Thyroid Function Tests",
				"Iron Studies",
				"Pap Smear",
				"Mammography (for 40+)",
				"Bone Density Scan",
				"Gynecologist Consultation",
				"Nutritionist Consultation",
			},
		},
		{
			ID:            "5",
			Name:          "Men's Health Package",
			Description:   "Comprehensive health screening for men's specific needs",
			Price:         429,
			OriginalPrice: price(579),
			Duration:      "3-4 hours",
			Category:      "Specialized",
			Image:         placeholderImage,
			Inclusions: []string{
				"Complete Blood Count",
				"Testosterone Levels",
				"Prostate Screening (PSA)",
				"Lipid Profile",
				"Liver Function Tests",
				"Cardiac Risk Assessment",
				"Lung Function Tests",
				"Urologist Consultation",
				"Fitness Assessment",
			},
		},
		{
			ID:            "6",
			Name:          "Senior Citizen Package",
			Description:   "Specialized care for adults 60 years and above",
			Price:         549,
			OriginalPrice: price(699),
			Duration:      "4-5 hours",
			Category:      "Specialized",
			Image:         placeholderImage,
			Inclusions: []string{
				"Comprehensive Blood Panel",
				"Cardiac Assessment",
				"Bone Health Screening",
				"Cognitive Assessment",
				"Vision & Hearing Tests",
				"Diabetic Screening",
				"Cancer Screening",
				"Geriatrician Consultation",
				"Physiotherapy Assessment",
			},
		},
		{
			ID:            "7",
			Name:          "Diabetes Care Package",
			Description:   "Specialized monitoring and management for diabetes",
			Price:         349,
			OriginalPrice: price(449),
			Duration:      "2-3 hours",
			Category:      "Specialized",
			Image:         placeholderImage,
			Inclusions: []string{
				"HbA1c Test",
				"Fasting & Post-meal Glucose",
				"Lipid Profile",
				"Kidney Function Tests",
				"Eye Examination",
				"Foot Assessment",
				"Blood Pressure Monitoring",
				"Endocrinologist Consultation",
				"Diabetic Educator Session",
			},
		},
		{
			ID:            "8",
			Name:          "Heart Health Package",
			Description:   "Comprehensive cardiac assessment and screening",
			Price:         699,
			OriginalPrice: price(899),
			Duration:      "4-5 hours",
			Category:      "Specialized",
			Image:         placeholderImage,
			Inclusions: []string{
				"ECG & Echo Cardiogram",
				"Stress Test (TMT)",
				"2D Echo Color Doppler",
				"Lipid Profile Advanced",
				"Cardiac Enzymes",
				"Blood Pressure Monitoring",
				"Chest X-Ray",
				"Cardiologist Consultation",
				"Lifestyle Counseling",
			},
		},
	}
}
